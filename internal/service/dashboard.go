package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

const topMedicineCount = 5

// profitCostRatio estimates cost of goods as a share of the subtotal.
var profitCostRatio = decimal.RequireFromString("0.85")

type Cards struct {
	TodayRevenue      decimal.Decimal `json:"todayRevenue"`
	TodayProfit       decimal.Decimal `json:"todayProfit"`
	CreditOutstanding decimal.Decimal `json:"creditOutstanding"`
	LowStockCount     int64           `json:"lowStockCount"`
	ExpiryAlert       int             `json:"expiryAlert"`
}

type MonthlyRevenue struct {
	CurrentMonthRevenue decimal.Decimal `json:"currentMonthRevenue"`
	LastMonthRevenue    decimal.Decimal `json:"lastMonthRevenue"`
	GrowthPercent       decimal.Decimal `json:"growthPercent"`
	Direction           string          `json:"direction"`
}

type Stats struct {
	CurrentMonthRevenue decimal.Decimal   `json:"currentMonthRevenue"`
	LastMonthRevenue    decimal.Decimal   `json:"lastMonthRevenue"`
	TopMedicines        []store.TopSeller `json:"topMedicines"`
}

// Dashboard aggregates KPIs of one shop. Day and month boundaries are UTC.
type Dashboard struct {
	store *store.Store
	clock clock.Clock
}

func NewDashboard(st *store.Store, clk clock.Clock) *Dashboard {
	return &Dashboard{store: st, clock: clk}
}

func (d *Dashboard) Cards(ctx context.Context, shopID int64) (Cards, error) {
	now := d.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, DefaultExpiryWindowDays).Format(domain.ExpiryLayout)

	var cards Cards
	err := d.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		today, err := q.SalesBetween(ctx, shopID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		revenue, profit := decimal.Zero, decimal.Zero
		for _, s := range today {
			revenue = revenue.Add(s.FinalTotal)
			margin := s.FinalTotal.Sub(s.Subtotal.Mul(profitCostRatio))
			if margin.IsPositive() {
				profit = profit.Add(margin)
			}
		}
		cards.TodayRevenue = domain.Round2(revenue)
		cards.TodayProfit = domain.Round2(profit)

		if cards.CreditOutstanding, err = q.SumOutstanding(ctx, shopID); err != nil {
			return err
		}
		if cards.LowStockCount, err = q.CountLowStock(ctx, shopID, domain.LowStockThreshold); err != nil {
			return err
		}
		expiring, err := q.ExpiringMedicines(ctx, shopID, cutoff)
		if err != nil {
			return err
		}
		cards.ExpiryAlert = len(expiring)
		return nil
	})
	return cards, err
}

// MonthlyRevenue compares this calendar month with the previous one. With no
// revenue last month growth is 100% if anything was sold this month, else 0.
func (d *Dashboard) MonthlyRevenue(ctx context.Context, shopID int64) (MonthlyRevenue, error) {
	var m MonthlyRevenue
	err := d.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		m.CurrentMonthRevenue, m.LastMonthRevenue, err = d.monthTotals(ctx, q, shopID)
		return err
	})
	if err != nil {
		return MonthlyRevenue{}, err
	}
	switch {
	case m.LastMonthRevenue.IsZero() && m.CurrentMonthRevenue.IsPositive():
		m.GrowthPercent = decimal.NewFromInt(100)
	case m.LastMonthRevenue.IsZero():
		m.GrowthPercent = decimal.Zero
	default:
		m.GrowthPercent = domain.Round2(m.CurrentMonthRevenue.Sub(m.LastMonthRevenue).
			Div(m.LastMonthRevenue).Mul(decimal.NewFromInt(100)))
	}
	m.Direction = "up"
	if m.GrowthPercent.IsNegative() {
		m.Direction = "down"
	}
	return m, nil
}

// TopMedicines ranks sold item names by quantity.
func (d *Dashboard) TopMedicines(ctx context.Context, shopID int64) ([]store.TopSeller, error) {
	var top []store.TopSeller
	err := d.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		top, err = q.TopMedicines(ctx, shopID, topMedicineCount)
		return err
	})
	return top, err
}

func (d *Dashboard) Stats(ctx context.Context, shopID int64) (Stats, error) {
	var st Stats
	err := d.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if st.CurrentMonthRevenue, st.LastMonthRevenue, err = d.monthTotals(ctx, q, shopID); err != nil {
			return err
		}
		st.TopMedicines, err = q.TopMedicines(ctx, shopID, topMedicineCount)
		return err
	})
	return st, err
}

func (d *Dashboard) monthTotals(ctx context.Context, q *store.Queries, shopID int64) (current, last decimal.Decimal, err error) {
	now := d.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastStart := monthStart.AddDate(0, -1, 0)

	if current, err = revenueBetween(ctx, q, shopID, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return
	}
	last, err = revenueBetween(ctx, q, shopID, lastStart, monthStart)
	return
}

func revenueBetween(ctx context.Context, q *store.Queries, shopID int64, from, to time.Time) (decimal.Decimal, error) {
	rows, err := q.SalesBetween(ctx, shopID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.FinalTotal)
	}
	return domain.Round2(total), nil
}
