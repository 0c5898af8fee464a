package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer belongs to exactly one shop. The purchase totals are derived from
// the customer's sales whenever the customer is read.
type Customer struct {
	ID               int64           `db:"id" json:"id"`
	ShopID           int64           `db:"shop_id" json:"shopId"`
	Name             string          `db:"name" json:"name"`
	Phone            string          `db:"phone" json:"phone"`
	Address          string          `db:"address" json:"address"`
	CustomerCode     string          `db:"customer_code" json:"customerId"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	TotalPurchases   decimal.Decimal `db:"-" json:"totalPurchases"`
	TotalDue         decimal.Decimal `db:"-" json:"totalDue"`
	LastPurchaseDate *time.Time      `db:"-" json:"lastPurchaseDate"`
}
