package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/database/dbtest"
	"pharmatrack/m/internal/service"
	"pharmatrack/m/internal/store"
)

var t0 = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type env struct {
	store     *store.Store
	clock     *clock.FakeClock
	activity  *activity.Recorder
	customers *service.Customers
	medicines *service.Medicines
	sales     *service.Sales
	credits   *service.Credits
	settings  *service.Settings
	dashboard *service.Dashboard
	export    *service.Export
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := store.New(dbtest.New(t))
	clk := clock.NewFakeClock(t0)
	log := zap.NewNop()
	rec := activity.NewRecorder(st, clk, log)
	return &env{
		store:     st,
		clock:     clk,
		activity:  rec,
		customers: service.NewCustomers(st, clk, rec),
		medicines: service.NewMedicines(st, clk, rec),
		sales:     service.NewSales(st, clk, rec, log),
		credits:   service.NewCredits(st, clk, rec),
		settings:  service.NewSettings(st, clk, rec),
		dashboard: service.NewDashboard(st, clk),
		export:    service.NewExport(st, clk, rec),
	}
}

func (e *env) shop(t *testing.T, name string) int64 {
	t.Helper()
	shop := domain.Shop{
		ShopName:           name,
		OwnerName:          "Owner of " + name,
		SubscriptionType:   domain.PlanTrial,
		SubscriptionStatus: domain.StatusTrial,
		IsActive:           true,
		CreatedAt:          t0,
		UpdatedAt:          t0,
	}
	require.NoError(t, e.store.Global(context.Background(), func(q *store.Queries) error {
		return q.InsertShop(context.Background(), &shop)
	}))
	return shop.ID
}

func (e *env) medicine(t *testing.T, shopID int64, name, price string, stock int64) domain.Medicine {
	t.Helper()
	m, created, err := e.medicines.Upsert(context.Background(), shopID, service.MedicineInput{
		Name:         name,
		MRP:          dec(price),
		SellingPrice: dec(price),
		Stock:        stock,
		Expiry:       "2027-12-31",
	})
	require.NoError(t, err)
	require.True(t, created)
	return m
}

func (e *env) stock(t *testing.T, shopID, medicineID int64) int64 {
	t.Helper()
	var stock int64
	require.NoError(t, e.store.Tenant(context.Background(), shopID, func(q *store.Queries) error {
		m, err := q.GetMedicine(context.Background(), shopID, medicineID)
		stock = m.Stock
		return err
	}))
	return stock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
