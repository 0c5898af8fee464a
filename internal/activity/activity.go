// Package activity keeps the per-shop audit trail.
package activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/tenant"
)

// Entry describes one action. The shop, user and client address come from
// the request context.
type Entry struct {
	Action   string
	Entity   string
	EntityID int64
	Details  string
}

type Recorder struct {
	store *store.Store
	clock clock.Clock
	log   *zap.Logger
}

func NewRecorder(st *store.Store, clk clock.Clock, log *zap.Logger) *Recorder {
	return &Recorder{store: st, clock: clk, log: log.Named("activity")}
}

// Record appends e to shopID's trail. Failures are logged and dropped.
func (r *Recorder) Record(ctx context.Context, shopID int64, e Entry) {
	a := domain.Activity{
		ShopID:    shopID,
		UserID:    tenant.UserID(ctx),
		Action:    e.Action,
		Entity:    e.Entity,
		Details:   e.Details,
		IP:        tenant.ClientIP(ctx),
		CreatedAt: r.clock.Now(),
	}
	if e.EntityID > 0 {
		id := e.EntityID
		a.EntityID = &id
	}
	err := r.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		return q.InsertActivity(ctx, &a)
	})
	if err != nil {
		r.log.Warn("record activity", zap.Int64("shop_id", shopID), zap.String("action", e.Action), zap.Error(err))
	}
}

// Recent returns the newest entries of shopID.
func (r *Recorder) Recent(ctx context.Context, shopID int64, limit int) ([]domain.Activity, error) {
	var entries []domain.Activity
	err := r.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		entries, err = q.ListActivity(ctx, shopID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return entries, nil
}
