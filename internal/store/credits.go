package store

import (
	"context"
	"fmt"

	"pharmatrack/m/domain"
)

const creditSelect = `SELECT cr.id, cr.shop_id, cr.customer_id, cr.sale_id, cr.total_amount, cr.paid, cr.due, cr.status,
        cr.created_at, cr.updated_at, cu.name AS customer_name, cu.phone AS customer_phone
        FROM credits cr JOIN customers cu ON cu.shop_id = cr.shop_id AND cu.id = cr.customer_id`

// UpsertCredit creates the credit of a sale or refreshes its amounts.
func (q *Queries) UpsertCredit(ctx context.Context, c *domain.Credit) error {
	c.Status = domain.CreditStatusFor(c.Due)
	id, err := q.insertID(ctx, `INSERT INTO credits (shop_id, customer_id, sale_id, total_amount, paid, due, status, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (sale_id) DO UPDATE SET total_amount = excluded.total_amount, paid = excluded.paid,
                due = excluded.due, status = excluded.status, updated_at = excluded.updated_at
            RETURNING id`,
		c.ShopID, c.CustomerID, c.SaleID, c.TotalAmount, c.Paid, c.Due, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert credit: %w", err)
	}
	c.ID = id
	return nil
}

func (q *Queries) GetCredit(ctx context.Context, shopID, id int64) (domain.Credit, error) {
	var c domain.Credit
	if err := q.get(ctx, &c, creditSelect+` WHERE cr.shop_id = ? AND cr.id = ?`, shopID, id); err != nil {
		return domain.Credit{}, notFound(err, "credit")
	}
	return c, nil
}

// ListCredits returns the shop's credits, newest first. An empty status
// lists all of them.
func (q *Queries) ListCredits(ctx context.Context, shopID int64, status domain.CreditStatus) ([]domain.Credit, error) {
	credits := []domain.Credit{}
	query := creditSelect + ` WHERE cr.shop_id = ?`
	args := []any{shopID}
	if status != "" {
		query += ` AND cr.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY cr.created_at DESC, cr.id DESC`
	if err := q.sel(ctx, &credits, query, args...); err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}

// UpdateCreditPayment writes paid, due and the status derived from due.
func (q *Queries) UpdateCreditPayment(ctx context.Context, c *domain.Credit) error {
	c.Status = domain.CreditStatusFor(c.Due)
	res, err := q.exec(ctx, `UPDATE credits SET paid = ?, due = ?, status = ?, updated_at = ? WHERE shop_id = ? AND id = ?`,
		c.Paid, c.Due, c.Status, c.UpdatedAt, c.ShopID, c.ID)
	if err != nil {
		return fmt.Errorf("update credit: %w", err)
	}
	return affectedOne(res, "credit")
}
