package domain

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary amount to paise.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DueAmount is max(0, total-paid).
func DueAmount(total, paid decimal.Decimal) decimal.Decimal {
	due := total.Sub(paid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return Round2(due)
}

// LineTotal is price*qty less a percentage discount.
func LineTotal(price decimal.Decimal, qty int64, discountPercent decimal.Decimal) decimal.Decimal {
	gross := price.Mul(decimal.NewFromInt(qty))
	factor := hundred.Sub(discountPercent).Div(hundred)
	return Round2(gross.Mul(factor))
}

// Percent returns pct% of amount.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(pct).Div(hundred))
}
