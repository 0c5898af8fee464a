package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmatrack/m/domain"
)

const medicineColumns = `id, shop_id, name, mrp, selling_price, stock, expiry, created_at, updated_at`

func (q *Queries) InsertMedicine(ctx context.Context, m *domain.Medicine) error {
	id, err := q.insertID(ctx, `INSERT INTO medicines (shop_id, name, mrp, selling_price, stock, expiry, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		m.ShopID, m.Name, m.MRP, m.SellingPrice, m.Stock, m.Expiry, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	m.ID = id
	return nil
}

func (q *Queries) GetMedicine(ctx context.Context, shopID, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	if err := q.get(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE shop_id = ? AND id = ?`, shopID, id); err != nil {
		return domain.Medicine{}, notFound(err, "medicine")
	}
	return m, nil
}

// FindMedicineByName matches the name exactly, ignoring case.
func (q *Queries) FindMedicineByName(ctx context.Context, shopID int64, name string) (domain.Medicine, error) {
	var m domain.Medicine
	err := q.get(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE shop_id = ? AND LOWER(name) = ? ORDER BY id LIMIT 1`,
		shopID, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return domain.Medicine{}, notFound(err, "medicine")
	}
	return m, nil
}

// SearchMedicines matches text anywhere in the name. Limit zero returns
// every match.
func (q *Queries) SearchMedicines(ctx context.Context, shopID int64, text string, limit, offset int) ([]domain.Medicine, error) {
	limit, offset = pageBounds(limit, offset)
	medicines := []domain.Medicine{}
	err := q.sel(ctx, &medicines, `SELECT `+medicineColumns+` FROM medicines
            WHERE shop_id = ? AND LOWER(name) LIKE ? ESCAPE '\'
            ORDER BY name, id LIMIT ? OFFSET ?`,
		shopID, containsPattern(text), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return medicines, nil
}

func (q *Queries) ListMedicines(ctx context.Context, shopID int64) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	if err := q.sel(ctx, &medicines, `SELECT `+medicineColumns+` FROM medicines WHERE shop_id = ? ORDER BY id`, shopID); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// ExpiringMedicines lists in-stock medicines expiring on or before cutoff
// (a YYYY-MM-DD date, which orders correctly as text).
func (q *Queries) ExpiringMedicines(ctx context.Context, shopID int64, cutoff string) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	err := q.sel(ctx, &medicines, `SELECT `+medicineColumns+` FROM medicines
            WHERE shop_id = ? AND expiry <> '' AND expiry <= ? AND stock > 0
            ORDER BY expiry, name`, shopID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring medicines: %w", err)
	}
	return medicines, nil
}

func (q *Queries) UpdateMedicine(ctx context.Context, m domain.Medicine) error {
	res, err := q.exec(ctx, `UPDATE medicines SET name = ?, mrp = ?, selling_price = ?, stock = ?, expiry = ?, updated_at = ?
            WHERE shop_id = ? AND id = ?`,
		m.Name, m.MRP, m.SellingPrice, m.Stock, m.Expiry, m.UpdatedAt, m.ShopID, m.ID)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	return affectedOne(res, "medicine")
}

// AddStock increments stock and, when expiry is not empty, replaces the
// expiry date.
func (q *Queries) AddStock(ctx context.Context, shopID, id, qty int64, expiry string, now time.Time) error {
	res, err := q.exec(ctx, `UPDATE medicines SET stock = stock + ?,
            expiry = CASE WHEN ? <> '' THEN ? ELSE expiry END, updated_at = ?
            WHERE shop_id = ? AND id = ?`,
		qty, expiry, expiry, now, shopID, id)
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	return affectedOne(res, "medicine")
}

// DecrementStock takes qty off the medicine only if that much is on hand.
// It reports false when the stock was insufficient.
func (q *Queries) DecrementStock(ctx context.Context, shopID, id, qty int64, now time.Time) (bool, error) {
	res, err := q.exec(ctx, `UPDATE medicines SET stock = stock - ?, updated_at = ?
            WHERE shop_id = ? AND id = ? AND stock >= ?`,
		qty, now, shopID, id, qty)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (q *Queries) CountLowStock(ctx context.Context, shopID int64, threshold int64) (int64, error) {
	var n int64
	if err := q.get(ctx, &n, `SELECT COUNT(*) FROM medicines WHERE shop_id = ? AND stock < ?`, shopID, threshold); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}
