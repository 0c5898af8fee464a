package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditPending CreditStatus = "pending"
	CreditPaid    CreditStatus = "paid"
)

// Credit tracks the unpaid balance of one sale.
type Credit struct {
	ID            int64           `db:"id" json:"id"`
	ShopID        int64           `db:"shop_id" json:"shopId"`
	CustomerID    int64           `db:"customer_id" json:"customerId"`
	SaleID        int64           `db:"sale_id" json:"saleId"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Paid          decimal.Decimal `db:"paid" json:"paid"`
	Due           decimal.Decimal `db:"due" json:"due"`
	Status        CreditStatus    `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	CustomerPhone string          `db:"customer_phone" json:"customerPhone"`
}

// CreditStatusFor derives the status from the outstanding amount.
func CreditStatusFor(due decimal.Decimal) CreditStatus {
	if due.LessThanOrEqual(decimal.Zero) {
		return CreditPaid
	}
	return CreditPending
}

// ApplyPayment sets the cumulative paid amount and recomputes due and status.
func (c *Credit) ApplyPayment(paid decimal.Decimal) {
	c.Paid = paid
	c.Due = DueAmount(c.TotalAmount, paid)
	c.Status = CreditStatusFor(c.Due)
}
