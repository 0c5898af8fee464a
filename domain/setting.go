package domain

import "time"

// Setting holds one shop's invoice and store details.
type Setting struct {
	ID            int64     `db:"id" json:"id"`
	ShopID        int64     `db:"shop_id" json:"shopId"`
	StoreName     string    `db:"store_name" json:"storeName"`
	OwnerName     string    `db:"owner_name" json:"ownerName"`
	Address       string    `db:"address" json:"address"`
	Phone         string    `db:"phone" json:"phone"`
	AltPhone      string    `db:"alt_phone" json:"altPhone"`
	GSTNumber     string    `db:"gst_number" json:"gstNumber"`
	InvoicePrefix string    `db:"invoice_prefix" json:"invoicePrefix"`
	Currency      string    `db:"currency" json:"currency"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

const (
	DefaultStoreName     = "My Pharmacy"
	DefaultInvoicePrefix = "INV"
	DefaultCurrency      = "INR"
)
