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

const saleColumns = `s.id, s.shop_id, s.customer_id, s.user_id, s.subtotal, s.gst_percent, s.gst, s.discount,
        s.final_total, s.paid, s.due, s.idempotency_key, s.created_at`

const saleSelect = `SELECT ` + saleColumns + `, COALESCE(c.name, '') AS customer_name, COALESCE(c.phone, '') AS customer_phone
        FROM sales s LEFT JOIN customers c ON c.shop_id = s.shop_id AND c.id = s.customer_id`

type saleRow struct {
	domain.Sale
	CustomerName  string `db:"customer_name"`
	CustomerPhone string `db:"customer_phone"`
}

func (r saleRow) sale() domain.Sale {
	s := r.Sale
	s.CustomerName = r.CustomerName
	s.CustomerPhone = r.CustomerPhone
	return s
}

// InsertSale stores the sale and its items, stamping the sale's shop on
// every item.
func (q *Queries) InsertSale(ctx context.Context, sale *domain.Sale) error {
	id, err := q.insertID(ctx, `INSERT INTO sales (shop_id, customer_id, user_id, subtotal, gst_percent, gst, discount,
            final_total, paid, due, idempotency_key, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		sale.ShopID, sale.CustomerID, sale.UserID, sale.Subtotal, sale.GSTPercent, sale.GST, sale.Discount,
		sale.FinalTotal, sale.Paid, sale.Due, sale.IdempotencyKey, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	sale.ID = id

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = id
		item.ShopID = sale.ShopID
		item.Position = i
		itemID, err := q.insertID(ctx, `INSERT INTO sale_items (sale_id, shop_id, position, medicine_id, name, qty, price,
                item_discount_percent, line_total) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			item.SaleID, item.ShopID, item.Position, item.MedicineID, item.Name, item.Qty, item.Price,
			item.ItemDiscountPercent, item.LineTotal)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
		item.ID = itemID
	}
	return nil
}

func (q *Queries) GetSale(ctx context.Context, shopID, id int64) (domain.Sale, error) {
	var row saleRow
	if err := q.get(ctx, &row, saleSelect+` WHERE s.shop_id = ? AND s.id = ?`, shopID, id); err != nil {
		return domain.Sale{}, notFound(err, "sale")
	}
	sales := []domain.Sale{row.sale()}
	if err := q.attachItems(ctx, shopID, sales); err != nil {
		return domain.Sale{}, err
	}
	return sales[0], nil
}

// GetSaleByIdempotencyKey reports found=false when no sale used key.
func (q *Queries) GetSaleByIdempotencyKey(ctx context.Context, shopID int64, key string) (domain.Sale, bool, error) {
	var id int64
	err := q.get(ctx, &id, `SELECT id FROM sales WHERE shop_id = ? AND idempotency_key = ?`, shopID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, false, nil
	}
	if err != nil {
		return domain.Sale{}, false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	sale, err := q.GetSale(ctx, shopID, id)
	if err != nil {
		return domain.Sale{}, false, err
	}
	return sale, true, nil
}

// ListSales returns the newest sales first, with items.
func (q *Queries) ListSales(ctx context.Context, shopID int64, limit, offset int) ([]domain.Sale, error) {
	if offset < 0 {
		offset = 0
	}
	return q.listSales(ctx, shopID, saleSelect+` WHERE s.shop_id = ? ORDER BY s.created_at DESC, s.id DESC LIMIT ? OFFSET ?`,
		shopID, clampLimit(limit, 50, 500), offset)
}

func (q *Queries) ListAllSales(ctx context.Context, shopID int64) ([]domain.Sale, error) {
	return q.listSales(ctx, shopID, saleSelect+` WHERE s.shop_id = ? ORDER BY s.created_at DESC, s.id DESC`, shopID)
}

func (q *Queries) ListCustomerSales(ctx context.Context, shopID, customerID int64) ([]domain.Sale, error) {
	return q.listSales(ctx, shopID, saleSelect+` WHERE s.shop_id = ? AND s.customer_id = ? ORDER BY s.created_at DESC, s.id DESC`,
		shopID, customerID)
}

func (q *Queries) listSales(ctx context.Context, shopID int64, query string, args ...any) ([]domain.Sale, error) {
	var rows []saleRow
	if err := q.sel(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]domain.Sale, len(rows))
	for i, row := range rows {
		sales[i] = row.sale()
	}
	if err := q.attachItems(ctx, shopID, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (q *Queries) attachItems(ctx context.Context, shopID int64, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}
	query, args, err := q.in(`SELECT id, sale_id, shop_id, position, medicine_id, name, qty, price, item_discount_percent, line_total
            FROM sale_items WHERE shop_id = ? AND sale_id IN (?) ORDER BY sale_id, position`, shopID, ids)
	if err != nil {
		return fmt.Errorf("prepare sale items query: %w", err)
	}
	var items []domain.SaleItem
	if err := q.selBound(ctx, &items, query, args...); err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}
	bySale := make(map[int64][]domain.SaleItem)
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Items = bySale[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []domain.SaleItem{}
		}
	}
	return nil
}

// UpdateSalePayment mirrors a credit payment onto its sale.
func (q *Queries) UpdateSalePayment(ctx context.Context, shopID, saleID int64, paid, due decimal.Decimal) error {
	res, err := q.exec(ctx, `UPDATE sales SET paid = ?, due = ? WHERE shop_id = ? AND id = ?`, paid, due, shopID, saleID)
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}
	return affectedOne(res, "sale")
}

// SaleTotals is one sale's amounts, for revenue aggregation.
type SaleTotals struct {
	Subtotal   decimal.Decimal `db:"subtotal"`
	FinalTotal decimal.Decimal `db:"final_total"`
}

// SalesBetween returns the totals of sales created in [from, to).
func (q *Queries) SalesBetween(ctx context.Context, shopID int64, from, to time.Time) ([]SaleTotals, error) {
	var rows []SaleTotals
	err := q.sel(ctx, &rows, `SELECT subtotal, final_total FROM sales WHERE shop_id = ? AND created_at >= ? AND created_at < ?`,
		shopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sales between: %w", err)
	}
	return rows, nil
}

func (q *Queries) SumOutstanding(ctx context.Context, shopID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := q.get(ctx, &sum, `SELECT COALESCE(SUM(due), 0) FROM sales WHERE shop_id = ? AND due > 0`, shopID); err != nil {
		return decimal.Zero, fmt.Errorf("sum outstanding: %w", err)
	}
	return domain.Round2(sum), nil
}

// TopSeller is a medicine name with the units sold under it.
type TopSeller struct {
	Name      string `db:"name" json:"name"`
	TotalSold int64  `db:"total_sold" json:"totalSold"`
}

// TopMedicines ranks snapshotted item names by quantity sold.
func (q *Queries) TopMedicines(ctx context.Context, shopID int64, limit int) ([]TopSeller, error) {
	top := []TopSeller{}
	err := q.sel(ctx, &top, `SELECT name, CAST(SUM(qty) AS BIGINT) AS total_sold FROM sale_items
            WHERE shop_id = ? GROUP BY name ORDER BY total_sold DESC, name LIMIT ?`,
		shopID, clampLimit(limit, 5, 50))
	if err != nil {
		return nil, fmt.Errorf("top medicines: %w", err)
	}
	return top, nil
}
