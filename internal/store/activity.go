package store

import (
	"context"
	"fmt"

	"pharmatrack/m/domain"
)

func (q *Queries) InsertActivity(ctx context.Context, a *domain.Activity) error {
	id, err := q.insertID(ctx, `INSERT INTO activity_logs (shop_id, user_id, action, entity, entity_id, details, ip, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		a.ShopID, a.UserID, a.Action, a.Entity, a.EntityID, a.Details, a.IP, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	a.ID = id
	return nil
}

func (q *Queries) ListActivity(ctx context.Context, shopID int64, limit int) ([]domain.Activity, error) {
	entries := []domain.Activity{}
	err := q.sel(ctx, &entries, `SELECT id, shop_id, user_id, action, entity, entity_id, details, ip, created_at
            FROM activity_logs WHERE shop_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		shopID, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}
