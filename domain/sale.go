package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is immutable after creation except for Paid and Due, which follow
// payments recorded on its Credit.
type Sale struct {
	ID             int64           `db:"id" json:"id"`
	ShopID         int64           `db:"shop_id" json:"shopId"`
	CustomerID     *int64          `db:"customer_id" json:"customerId"`
	UserID         *int64          `db:"user_id" json:"userId"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	GSTPercent     decimal.Decimal `db:"gst_percent" json:"gstPercent"`
	GST            decimal.Decimal `db:"gst" json:"gst"`
	Discount       decimal.Decimal `db:"discount" json:"discount"`
	FinalTotal     decimal.Decimal `db:"final_total" json:"finalTotal"`
	Paid           decimal.Decimal `db:"paid" json:"paid"`
	Due            decimal.Decimal `db:"due" json:"due"`
	IdempotencyKey *string         `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	Items          []SaleItem      `db:"-" json:"items"`
	CustomerName   string          `db:"-" json:"customerName,omitempty"`
	CustomerPhone  string          `db:"-" json:"customerPhone,omitempty"`
}

// SaleItem snapshots the medicine as it was sold.
type SaleItem struct {
	ID                  int64           `db:"id" json:"-"`
	SaleID              int64           `db:"sale_id" json:"-"`
	ShopID              int64           `db:"shop_id" json:"-"`
	Position            int             `db:"position" json:"-"`
	MedicineID          int64           `db:"medicine_id" json:"medicineId"`
	Name                string          `db:"name" json:"name"`
	Qty                 int64           `db:"qty" json:"qty"`
	Price               decimal.Decimal `db:"price" json:"price"`
	ItemDiscountPercent decimal.Decimal `db:"item_discount_percent" json:"itemDiscountPercent"`
	LineTotal           decimal.Decimal `db:"line_total" json:"lineTotal"`
}
