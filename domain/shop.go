package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the lifecycle state of a shop.
type SubscriptionStatus string

const (
	StatusInactive  SubscriptionStatus = "inactive"
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusSuspended SubscriptionStatus = "suspended"
)

// PlanType names a subscription plan. "trial" is the plan of a shop that has
// never paid.
type PlanType string

const (
	PlanTrial      PlanType = "trial"
	PlanMonthly    PlanType = "monthly"
	PlanQuarterly  PlanType = "quarterly"
	PlanHalfYearly PlanType = "halfYearly"
	PlanYearly     PlanType = "yearly"
)

// Shop is the tenant. Every other record points back at one.
type Shop struct {
	ID                    int64              `db:"id" json:"id"`
	ShopName              string             `db:"shop_name" json:"shopName"`
	OwnerName             string             `db:"owner_name" json:"ownerName"`
	OwnerEmail            string             `db:"owner_email" json:"ownerEmail"`
	Phone                 string             `db:"phone" json:"phone"`
	Address               string             `db:"address" json:"address"`
	SubscriptionType      PlanType           `db:"subscription_type" json:"subscriptionType"`
	SubscriptionStatus    SubscriptionStatus `db:"subscription_status" json:"subscriptionStatus"`
	TrialEndsAt           *time.Time         `db:"trial_ends_at" json:"trialEndsAt"`
	SubscriptionExpiresAt *time.Time         `db:"subscription_expires_at" json:"subscriptionExpiresAt"`
	SubscriptionAmount    decimal.Decimal    `db:"subscription_amount" json:"subscriptionAmount"`
	IsActive              bool               `db:"is_active" json:"isActive"`
	CreatedAt             time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updatedAt"`
}
