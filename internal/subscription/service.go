package subscription

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

// Service drives shop lifecycle transitions. Time-based expiry is applied
// lazily whenever a shop is checked.
type Service struct {
	store     *store.Store
	clock     clock.Clock
	trialDays int
	activity  *activity.Recorder
	log       *zap.Logger
}

func NewService(st *store.Store, clk clock.Clock, trialDays int, rec *activity.Recorder, log *zap.Logger) *Service {
	return &Service{store: st, clock: clk, trialDays: trialDays, activity: rec, log: log.Named("subscription")}
}

// TrialDays is the length of a new trial.
func (s *Service) TrialDays() int {
	return s.trialDays
}

// Check is the subscription gate: it returns the shop's snapshot, or a
// SubscriptionError when the shop may not operate. A stale trial or active
// status is persisted as expired before the error is returned.
func (s *Service) Check(ctx context.Context, shopID int64) (Snapshot, error) {
	snap, err := s.Refresh(ctx, shopID)
	if err != nil {
		return Snapshot{}, err
	}
	if !snap.Allowed {
		return snap, &domain.SubscriptionError{Status: snap.SubscriptionStatus, Message: snap.Message}
	}
	return snap, nil
}

// CheckLogin is Check for the login flow, which also admits shops that have
// not started their trial yet so they can activate it.
func (s *Service) CheckLogin(ctx context.Context, shopID int64) (Snapshot, error) {
	snap, err := s.Refresh(ctx, shopID)
	if err != nil {
		return Snapshot{}, err
	}
	if !snap.Allowed && !(snap.IsActive && snap.SubscriptionStatus == domain.StatusInactive) {
		return snap, &domain.SubscriptionError{Status: snap.SubscriptionStatus, Message: snap.Message}
	}
	return snap, nil
}

// Refresh loads the shop, persists a pending expiry and returns the
// current snapshot.
func (s *Service) Refresh(ctx context.Context, shopID int64) (Snapshot, error) {
	now := s.clock.Now()
	var shop domain.Shop
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		shop, err = q.GetShop(ctx, shopID)
		if err != nil {
			return err
		}
		if d := Evaluate(shop, now); d.Expire {
			from := shop.SubscriptionStatus
			if _, err := q.ExpireShop(ctx, shop.ID, from, now); err != nil {
				return err
			}
			s.log.Info("subscription expired",
				zap.Int64("shop_id", shop.ID),
				zap.String("from", string(from)))
			shop.SubscriptionStatus = domain.StatusExpired
			shop.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh subscription: %w", err)
	}
	return NewSnapshot(shop, now), nil
}

// StartTrial moves a shop that never started a trial into one.
func (s *Service) StartTrial(ctx context.Context, shopID int64) (Snapshot, error) {
	now := s.clock.Now()
	snap, err := s.transition(ctx, shopID, func(shop *domain.Shop) error {
		if shop.SubscriptionStatus != domain.StatusInactive {
			return &domain.ValidationError{Message: "trial can only be started once"}
		}
		ends := now.AddDate(0, 0, s.trialDays)
		shop.SubscriptionType = domain.PlanTrial
		shop.SubscriptionStatus = domain.StatusTrial
		shop.TrialEndsAt = &ends
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionSubscriptionChange, Entity: "shop", EntityID: shopID, Details: "trial started"})
	return snap, nil
}

// Upgrade activates a paid plan for its duration, starting now.
func (s *Service) Upgrade(ctx context.Context, shopID int64, planType domain.PlanType) (Snapshot, error) {
	plan, ok := LookupPlan(planType)
	if !ok {
		return Snapshot{}, &domain.ValidationError{Message: fmt.Sprintf("invalid plan type %q", planType)}
	}
	now := s.clock.Now()
	snap, err := s.transition(ctx, shopID, func(shop *domain.Shop) error {
		if shop.SubscriptionStatus == domain.StatusSuspended {
			return &domain.SubscriptionError{Status: domain.StatusSuspended, Message: MsgSuspended}
		}
		expires := now.AddDate(0, 0, plan.DurationDays)
		shop.SubscriptionType = plan.Type
		shop.SubscriptionStatus = domain.StatusActive
		shop.SubscriptionExpiresAt = &expires
		shop.SubscriptionAmount = plan.Price
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionSubscriptionChange, Entity: "shop", EntityID: shopID, Details: "upgraded to " + string(plan.Type)})
	return snap, nil
}

// Suspend blocks a shop until someone intervenes by hand.
func (s *Service) Suspend(ctx context.Context, shopID int64) (Snapshot, error) {
	snap, err := s.transition(ctx, shopID, func(shop *domain.Shop) error {
		shop.SubscriptionStatus = domain.StatusSuspended
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.log.Warn("shop suspended", zap.Int64("shop_id", shopID))
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionSubscriptionChange, Entity: "shop", EntityID: shopID, Details: "suspended"})
	return snap, nil
}

// ListShops evaluates every shop, for the platform operator.
func (s *Service) ListShops(ctx context.Context) ([]Snapshot, error) {
	now := s.clock.Now()
	var shops []domain.Shop
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		shops, err = q.ListShops(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, len(shops))
	for i, shop := range shops {
		out[i] = NewSnapshot(shop, now)
	}
	return out, nil
}

func (s *Service) transition(ctx context.Context, shopID int64, mutate func(*domain.Shop) error) (Snapshot, error) {
	now := s.clock.Now()
	var shop domain.Shop
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		shop, err = q.GetShop(ctx, shopID)
		if err != nil {
			return err
		}
		if d := Evaluate(shop, now); d.Expire {
			shop.SubscriptionStatus = domain.StatusExpired
		}
		if err := mutate(&shop); err != nil {
			return err
		}
		shop.UpdatedAt = now
		return q.UpdateShopSubscription(ctx, shop)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(shop, now), nil
}

// TrialWindow returns the trial end for a shop created at now.
func (s *Service) TrialWindow(now time.Time) time.Time {
	return now.AddDate(0, 0, s.trialDays)
}
