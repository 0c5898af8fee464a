package store

import (
	"context"
	"fmt"
	"time"

	"pharmatrack/m/domain"
)

const settingColumns = `id, shop_id, store_name, owner_name, address, phone, alt_phone, gst_number, invoice_prefix, currency, updated_at`

// EnsureSetting returns the shop's settings, creating them from defaults
// the first time.
func (q *Queries) EnsureSetting(ctx context.Context, shopID int64, defaults domain.Setting, now time.Time) (domain.Setting, error) {
	_, err := q.exec(ctx, `INSERT INTO settings (shop_id, store_name, owner_name, address, phone, alt_phone, gst_number,
            invoice_prefix, currency, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (shop_id) DO NOTHING`,
		shopID, defaults.StoreName, defaults.OwnerName, defaults.Address, defaults.Phone, defaults.AltPhone,
		defaults.GSTNumber, defaults.InvoicePrefix, defaults.Currency, now)
	if err != nil {
		return domain.Setting{}, fmt.Errorf("create settings: %w", err)
	}
	var s domain.Setting
	if err := q.get(ctx, &s, `SELECT `+settingColumns+` FROM settings WHERE shop_id = ?`, shopID); err != nil {
		return domain.Setting{}, notFound(err, "settings")
	}
	return s, nil
}

func (q *Queries) UpdateSetting(ctx context.Context, s domain.Setting) error {
	res, err := q.exec(ctx, `UPDATE settings SET store_name = ?, owner_name = ?, address = ?, phone = ?, alt_phone = ?,
            gst_number = ?, invoice_prefix = ?, currency = ?, updated_at = ? WHERE shop_id = ?`,
		s.StoreName, s.OwnerName, s.Address, s.Phone, s.AltPhone, s.GSTNumber, s.InvoicePrefix, s.Currency, s.UpdatedAt, s.ShopID)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return affectedOne(res, "settings")
}
