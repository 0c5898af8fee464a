package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
)

const customerColumns = `id, shop_id, name, phone, address, customer_code, created_at`

// InsertCustomerIfAbsent inserts c unless the shop already has a customer
// with that phone. It reports whether a row was created; c.ID is set either
// way.
func (q *Queries) InsertCustomerIfAbsent(ctx context.Context, c *domain.Customer) (bool, error) {
	id, err := q.insertID(ctx, `INSERT INTO customers (shop_id, name, phone, address, customer_code, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (shop_id, phone) DO NOTHING RETURNING id`,
		c.ShopID, c.Name, c.Phone, c.Address, c.CustomerCode, c.CreatedAt, c.CreatedAt)
	switch {
	case err == nil:
		c.ID = id
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := q.GetCustomerByPhone(ctx, c.ShopID, c.Phone)
		if err != nil {
			return false, err
		}
		*c = existing
		return false, nil
	default:
		return false, fmt.Errorf("insert customer: %w", err)
	}
}

func (q *Queries) GetCustomer(ctx context.Context, shopID, id int64) (domain.Customer, error) {
	var c domain.Customer
	if err := q.get(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE shop_id = ? AND id = ?`, shopID, id); err != nil {
		return domain.Customer{}, notFound(err, "customer")
	}
	return c, nil
}

func (q *Queries) GetCustomerByPhone(ctx context.Context, shopID int64, phone string) (domain.Customer, error) {
	var c domain.Customer
	if err := q.get(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE shop_id = ? AND phone = ?`, shopID, phone); err != nil {
		return domain.Customer{}, notFound(err, "customer")
	}
	return c, nil
}

// SearchCustomers matches text case-insensitively anywhere in the name or
// phone. An empty text lists the shop's customers; limit zero returns every
// match.
func (q *Queries) SearchCustomers(ctx context.Context, shopID int64, text string, limit, offset int) ([]domain.Customer, error) {
	pattern := containsPattern(text)
	limit, offset = pageBounds(limit, offset)
	customers := []domain.Customer{}
	err := q.sel(ctx, &customers, `SELECT `+customerColumns+` FROM customers
            WHERE shop_id = ? AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\')
            ORDER BY name, id LIMIT ? OFFSET ?`,
		shopID, pattern, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

func (q *Queries) ListCustomers(ctx context.Context, shopID int64) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	if err := q.sel(ctx, &customers, `SELECT `+customerColumns+` FROM customers WHERE shop_id = ? ORDER BY id`, shopID); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (q *Queries) UpdateCustomer(ctx context.Context, c domain.Customer, now time.Time) error {
	res, err := q.exec(ctx, `UPDATE customers SET name = ?, phone = ?, address = ?, updated_at = ? WHERE shop_id = ? AND id = ?`,
		c.Name, c.Phone, c.Address, now, c.ShopID, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return affectedOne(res, "customer")
}

type customerSaleRow struct {
	CustomerID int64           `db:"customer_id"`
	FinalTotal decimal.Decimal `db:"final_total"`
	Due        decimal.Decimal `db:"due"`
	CreatedAt  time.Time       `db:"created_at"`
}

// FillCustomerTotals derives purchase totals for customers from their sales.
func (q *Queries) FillCustomerTotals(ctx context.Context, shopID int64, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	ids := make([]int64, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	query, args, err := q.in(`SELECT customer_id, final_total, due, created_at FROM sales
            WHERE shop_id = ? AND customer_id IN (?)`, shopID, ids)
	if err != nil {
		return fmt.Errorf("prepare customer totals: %w", err)
	}
	var rows []customerSaleRow
	if err := q.selBound(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("load customer totals: %w", err)
	}

	byID := make(map[int64]*domain.Customer, len(customers))
	for i := range customers {
		customers[i].TotalPurchases = decimal.Zero
		customers[i].TotalDue = decimal.Zero
		customers[i].LastPurchaseDate = nil
		byID[customers[i].ID] = &customers[i]
	}
	for _, row := range rows {
		c := byID[row.CustomerID]
		if c == nil {
			continue
		}
		c.TotalPurchases = c.TotalPurchases.Add(row.FinalTotal)
		c.TotalDue = c.TotalDue.Add(row.Due)
		if c.LastPurchaseDate == nil || row.CreatedAt.After(*c.LastPurchaseDate) {
			at := row.CreatedAt
			c.LastPurchaseDate = &at
		}
	}
	for i := range customers {
		customers[i].TotalPurchases = domain.Round2(customers[i].TotalPurchases)
		customers[i].TotalDue = domain.Round2(customers[i].TotalDue)
	}
	return nil
}
