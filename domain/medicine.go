package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpiryLayout is the calendar date format of Medicine.Expiry.
const ExpiryLayout = "2006-01-02"

// LowStockThreshold marks a medicine as running low.
const LowStockThreshold = 10

type Medicine struct {
	ID           int64           `db:"id" json:"id"`
	ShopID       int64           `db:"shop_id" json:"shopId"`
	Name         string          `db:"name" json:"name"`
	MRP          decimal.Decimal `db:"mrp" json:"mrp"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	Stock        int64           `db:"stock" json:"stock"`
	Expiry       string          `db:"expiry" json:"expiry"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// ExpiresWithin reports whether the medicine expires on or before now+days.
// Medicines with no parsable expiry never do.
func (m Medicine) ExpiresWithin(now time.Time, days int) bool {
	if m.Expiry == "" {
		return false
	}
	exp, err := time.Parse(ExpiryLayout, m.Expiry)
	if err != nil {
		return false
	}
	return !exp.After(now.AddDate(0, 0, days))
}
