package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreditStatusFollowsDue(t *testing.T) {
	assert.Equal(t, CreditPaid, CreditStatusFor(decimal.Zero))
	assert.Equal(t, CreditPaid, CreditStatusFor(dec("-1")))
	assert.Equal(t, CreditPending, CreditStatusFor(dec("0.01")))
}

func TestCreditApplyPayment(t *testing.T) {
	c := Credit{TotalAmount: dec("500")}

	c.ApplyPayment(dec("200"))
	assert.True(t, c.Due.Equal(dec("300")))
	assert.Equal(t, CreditPending, c.Status)

	c.ApplyPayment(dec("500"))
	assert.True(t, c.Due.IsZero())
	assert.Equal(t, CreditPaid, c.Status)

	c.ApplyPayment(dec("650"))
	assert.True(t, c.Due.IsZero(), "overpayment never produces negative due")
	assert.Equal(t, CreditPaid, c.Status)
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(dec("12.50"), 4, decimal.Zero).Equal(dec("50")))
	assert.True(t, LineTotal(dec("100"), 3, dec("10")).Equal(dec("270")))
	assert.True(t, LineTotal(dec("9.99"), 3, dec("5")).Equal(dec("28.47")))
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(dec("1000"), dec("12")).Equal(dec("120")))
	assert.True(t, Percent(dec("33.33"), dec("5")).Equal(dec("1.67")))
}

func TestMedicineExpiresWithin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Medicine{Expiry: "2026-03-20"}.ExpiresWithin(now, 30))
	assert.True(t, Medicine{Expiry: "2026-02-01"}.ExpiresWithin(now, 30))
	assert.False(t, Medicine{Expiry: "2026-06-01"}.ExpiresWithin(now, 30))
	assert.False(t, Medicine{Expiry: ""}.ExpiresWithin(now, 30))
	assert.False(t, Medicine{Expiry: "next year"}.ExpiresWithin(now, 30))
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount decimal.Decimal `json:"amount"`
	}{Amount: dec("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":12.5}`, string(out))
}

func TestErrorTypes(t *testing.T) {
	var err error = &InsufficientStockError{Medicine: "Paracetamol", Requested: 3, Available: 2}
	var stock *InsufficientStockError
	require.True(t, errors.As(err, &stock))
	assert.Contains(t, err.Error(), "Paracetamol")

	var nf *NotFoundError
	require.True(t, errors.As(NotFound("customer"), &nf))
	assert.Equal(t, "customer not found", nf.Error())

	var ve *ValidationError
	require.True(t, errors.As(Invalid("qty must be positive, got %d", -1), &ve))
	assert.Equal(t, "qty must be positive, got -1", ve.Message)
}
