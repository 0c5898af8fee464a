package subscription

import (
	"math"
	"time"

	"pharmatrack/m/domain"
)

const (
	MsgInactive     = "Please activate your free trial to continue"
	MsgTrialExpired = "Your free trial has expired. Please upgrade to continue"
	MsgExpired      = "Your subscription has expired. Please renew to continue"
	MsgSuspended    = "Your account has been suspended. Please contact support"
	MsgDeactivated  = "Your shop account has been deactivated"
	MsgUnconfigured = "Subscription is not configured for this shop"
)

// Decision is the outcome of evaluating a shop at an instant.
type Decision struct {
	// Status is the effective status at the evaluated instant.
	Status  domain.SubscriptionStatus
	Allowed bool
	// Expire is set when the stored status lags the clock and must be
	// persisted as expired.
	Expire  bool
	Message string
}

// Evaluate decides whether shop may operate at now. It has no side effects.
func Evaluate(shop domain.Shop, now time.Time) Decision {
	if !shop.IsActive {
		return Decision{Status: shop.SubscriptionStatus, Message: MsgDeactivated}
	}

	switch shop.SubscriptionStatus {
	case domain.StatusTrial:
		if shop.TrialEndsAt != nil && shop.TrialEndsAt.Before(now) {
			return Decision{Status: domain.StatusExpired, Expire: true, Message: MsgTrialExpired}
		}
		return Decision{Status: domain.StatusTrial, Allowed: true}
	case domain.StatusActive:
		if shop.SubscriptionExpiresAt != nil && shop.SubscriptionExpiresAt.Before(now) {
			return Decision{Status: domain.StatusExpired, Expire: true, Message: MsgExpired}
		}
		return Decision{Status: domain.StatusActive, Allowed: true}
	case domain.StatusInactive:
		return Decision{Status: domain.StatusInactive, Message: MsgInactive}
	case domain.StatusSuspended:
		return Decision{Status: domain.StatusSuspended, Message: MsgSuspended}
	case domain.StatusExpired:
		msg := MsgExpired
		if shop.SubscriptionType == domain.PlanTrial || shop.SubscriptionType == "" {
			msg = MsgTrialExpired
		}
		return Decision{Status: domain.StatusExpired, Message: msg}
	default:
		return Decision{Status: shop.SubscriptionStatus, Message: MsgUnconfigured}
	}
}

// Snapshot is the client-facing view of a shop's subscription.
type Snapshot struct {
	ShopID                int64                     `json:"shopId"`
	ShopName              string                    `json:"shopName"`
	SubscriptionType      domain.PlanType           `json:"subscriptionType"`
	SubscriptionStatus    domain.SubscriptionStatus `json:"subscriptionStatus"`
	TrialEndsAt           *time.Time                `json:"trialEndsAt"`
	SubscriptionExpiresAt *time.Time                `json:"subscriptionExpiresAt"`
	DaysRemaining         int                       `json:"daysRemaining"`
	IsActive              bool                      `json:"isActive"`
	Allowed               bool                      `json:"allowed"`
	Message               string                    `json:"message,omitempty"`
}

// NewSnapshot evaluates shop at now.
func NewSnapshot(shop domain.Shop, now time.Time) Snapshot {
	d := Evaluate(shop, now)
	snap := Snapshot{
		ShopID:                shop.ID,
		ShopName:              shop.ShopName,
		SubscriptionType:      shop.SubscriptionType,
		SubscriptionStatus:    d.Status,
		TrialEndsAt:           shop.TrialEndsAt,
		SubscriptionExpiresAt: shop.SubscriptionExpiresAt,
		IsActive:              shop.IsActive,
		Allowed:               d.Allowed,
		Message:               d.Message,
	}
	if d.Allowed {
		end := shop.SubscriptionExpiresAt
		if d.Status == domain.StatusTrial {
			end = shop.TrialEndsAt
		}
		if end != nil {
			snap.DaysRemaining = daysUntil(now, *end)
		}
	}
	return snap
}

func daysUntil(now, end time.Time) int {
	if !end.After(now) {
		return 0
	}
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
