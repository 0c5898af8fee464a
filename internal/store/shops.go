package store

import (
	"context"
	"fmt"
	"time"

	"pharmatrack/m/domain"
)

const shopColumns = `id, shop_name, owner_name, owner_email, phone, address, subscription_type,
        subscription_status, trial_ends_at, subscription_expires_at, subscription_amount,
        is_active, created_at, updated_at`

func (q *Queries) InsertShop(ctx context.Context, shop *domain.Shop) error {
	id, err := q.insertID(ctx, `INSERT INTO shops (shop_name, owner_name, owner_email, phone, address, subscription_type,
            subscription_status, trial_ends_at, subscription_expires_at, subscription_amount, is_active, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		shop.ShopName, shop.OwnerName, shop.OwnerEmail, shop.Phone, shop.Address, shop.SubscriptionType,
		shop.SubscriptionStatus, shop.TrialEndsAt, shop.SubscriptionExpiresAt, shop.SubscriptionAmount,
		shop.IsActive, shop.CreatedAt, shop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert shop: %w", err)
	}
	shop.ID = id
	return nil
}

func (q *Queries) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	var shop domain.Shop
	if err := q.get(ctx, &shop, `SELECT `+shopColumns+` FROM shops WHERE id = ?`, id); err != nil {
		return domain.Shop{}, notFound(err, "shop")
	}
	return shop, nil
}

func (q *Queries) ListShops(ctx context.Context) ([]domain.Shop, error) {
	shops := []domain.Shop{}
	if err := q.sel(ctx, &shops, `SELECT `+shopColumns+` FROM shops ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}

// UpdateShopSubscription writes every subscription field of shop.
func (q *Queries) UpdateShopSubscription(ctx context.Context, shop domain.Shop) error {
	res, err := q.exec(ctx, `UPDATE shops SET subscription_type = ?, subscription_status = ?, trial_ends_at = ?,
            subscription_expires_at = ?, subscription_amount = ?, updated_at = ? WHERE id = ?`,
		shop.SubscriptionType, shop.SubscriptionStatus, shop.TrialEndsAt, shop.SubscriptionExpiresAt,
		shop.SubscriptionAmount, shop.UpdatedAt, shop.ID)
	if err != nil {
		return fmt.Errorf("update shop subscription: %w", err)
	}
	return affectedOne(res, "shop")
}

// ExpireShop moves a shop from status `from` to expired. It reports false when
// another request changed the status first.
func (q *Queries) ExpireShop(ctx context.Context, id int64, from domain.SubscriptionStatus, now time.Time) (bool, error) {
	res, err := q.exec(ctx, `UPDATE shops SET subscription_status = ?, updated_at = ? WHERE id = ? AND subscription_status = ?`,
		domain.StatusExpired, now, id, from)
	if err != nil {
		return false, fmt.Errorf("expire shop: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
