package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/service"
	"pharmatrack/m/internal/store"
)

func TestSaleCreateComputesTotalsAndOpensCredit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	med := e.medicine(t, shop, "Amoxicillin", "50", 10)

	sale, replayed, err := e.sales.Create(ctx, shop, service.SaleInput{
		Customer:   &service.CustomerInput{Name: "Ravi", Phone: "111"},
		Items:      []service.SaleItemInput{{MedicineID: med.ID, Qty: 3}},
		GSTPercent: dec("5"),
		Discount:   dec("5"),
		Paid:       dec("100"),
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	requireDec(t, "150", sale.Subtotal)
	requireDec(t, "7.5", sale.GST)
	requireDec(t, "152.5", sale.FinalTotal)
	requireDec(t, "52.5", sale.Due)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Amoxicillin", sale.Items[0].Name)
	requireDec(t, "150", sale.Items[0].LineTotal)
	assert.Equal(t, int64(7), e.stock(t, shop, med.ID))

	book, err := e.credits.List(ctx, shop, domain.CreditPending)
	require.NoError(t, err)
	assert.Equal(t, "A", book.StoreName)
	require.Len(t, book.Credits, 1)
	assert.Equal(t, sale.ID, book.Credits[0].SaleID)
	requireDec(t, "52.5", book.Credits[0].Due)
	assert.Equal(t, "Ravi", book.Credits[0].CustomerName)
}

func TestSaleSnapshotsItemAndHonoursOverrides(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	med := e.medicine(t, shop, "Dolo", "30", 10)
	price := dec("25")

	sale, _, err := e.sales.Create(ctx, shop, service.SaleInput{
		Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 2, Price: &price, ItemDiscountPercent: dec("10")}},
		Paid:  dec("45"),
	})
	require.NoError(t, err)
	requireDec(t, "45", sale.FinalTotal)
	assert.True(t, sale.Due.IsZero())
	assert.Nil(t, sale.CustomerID)

	_, err = e.medicines.Update(ctx, shop, med.ID, service.MedicineInput{Name: "Dolo 650", SellingPrice: dec("40"), Stock: 8})
	require.NoError(t, err)
	got, err := e.sales.Get(ctx, shop, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dolo", got.Items[0].Name)
	requireDec(t, "25", got.Items[0].Price)
}

func TestSaleInsufficientStockRollsBackEveryItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	a := e.medicine(t, shop, "A-med", "10", 10)
	b := e.medicine(t, shop, "B-med", "10", 2)

	_, _, err := e.sales.Create(ctx, shop, service.SaleInput{
		Items: []service.SaleItemInput{{MedicineID: a.ID, Qty: 4}, {MedicineID: b.ID, Qty: 3}},
		Paid:  dec("70"),
	})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, "B-med", short.Medicine)
	assert.Equal(t, int64(3), short.Requested)
	assert.Equal(t, int64(2), short.Available)

	assert.Equal(t, int64(10), e.stock(t, shop, a.ID))
	assert.Equal(t, int64(2), e.stock(t, shop, b.ID))
	sales, err := e.sales.List(ctx, shop, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestSaleRejectsOtherShopsRecords(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shopA, shopB := e.shop(t, "A"), e.shop(t, "B")
	foreign := e.medicine(t, shopB, "Foreign", "10", 10)
	foreignCustomer, _, err := e.customers.Create(ctx, shopB, service.CustomerInput{Name: "Zed", Phone: "9"})
	require.NoError(t, err)
	own := e.medicine(t, shopA, "Own", "10", 10)

	var nf *domain.NotFoundError
	_, _, err = e.sales.Create(ctx, shopA, service.SaleInput{Items: []service.SaleItemInput{{MedicineID: foreign.ID, Qty: 1}}, Paid: dec("10")})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "medicine", nf.Entity)
	assert.Equal(t, int64(10), e.stock(t, shopB, foreign.ID))

	_, _, err = e.sales.Create(ctx, shopA, service.SaleInput{
		CustomerID: &foreignCustomer.ID,
		Items:      []service.SaleItemInput{{MedicineID: own.ID, Qty: 1}},
		Paid:       dec("10"),
	})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "customer", nf.Entity)

	_, err = e.sales.Get(ctx, shopB, 1)
	assert.True(t, errors.As(err, &nf))
}

func TestSaleValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	med := e.medicine(t, shop, "Dolo", "30", 10)
	var verr *domain.ValidationError

	cases := map[string]service.SaleInput{
		"no items":          {},
		"zero qty":          {Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 0}}},
		"negative paid":     {Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1}}, Paid: dec("-1")},
		"discount too big":  {Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1}}, Discount: dec("31"), Paid: dec("0")},
		"due without buyer": {Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1}}, Paid: dec("10")},
		"item discount 101": {Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1, ItemDiscountPercent: dec("101")}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := e.sales.Create(ctx, shop, in)
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
	assert.Equal(t, int64(10), e.stock(t, shop, med.ID))
}

func TestSaleIdempotencyKeyReplays(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shopA, shopB := e.shop(t, "A"), e.shop(t, "B")
	med := e.medicine(t, shopA, "Dolo", "30", 10)
	in := service.SaleInput{
		Items:          []service.SaleItemInput{{MedicineID: med.ID, Qty: 2}},
		Paid:           dec("60"),
		IdempotencyKey: "checkout-42",
	}

	first, replayed, err := e.sales.Create(ctx, shopA, in)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := e.sales.Create(ctx, shopA, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(8), e.stock(t, shopA, med.ID))

	// Keys are scoped per shop.
	medB := e.medicine(t, shopB, "Dolo", "30", 10)
	in.Items[0].MedicineID = medB.ID
	_, replayed, err = e.sales.Create(ctx, shopB, in)
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	med := e.medicine(t, shop, "Scarce", "10", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.sales.Create(ctx, shop, service.SaleInput{
				Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1}},
				Paid:  dec("10"),
			})
			mu.Lock()
			defer mu.Unlock()
			var se *domain.InsufficientStockError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &se):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 7, short)
	assert.Equal(t, int64(0), e.stock(t, shop, med.ID))
	sales, err := e.sales.List(ctx, shop, 100, 0)
	require.NoError(t, err)
	assert.Len(t, sales, 5)
}

func TestSaleRecordsActivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shop := e.shop(t, "A")
	med := e.medicine(t, shop, "Dolo", "30", 10)
	sale, _, err := e.sales.Create(ctx, shop, service.SaleInput{Items: []service.SaleItemInput{{MedicineID: med.ID, Qty: 1}}, Paid: dec("30")})
	require.NoError(t, err)

	var entries []domain.Activity
	require.NoError(t, e.store.Tenant(ctx, shop, func(q *store.Queries) error {
		var err error
		entries, err = q.ListActivity(ctx, shop, 10)
		return err
	}))
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.ActionCreateSale, entries[0].Action)
	require.NotNil(t, entries[0].EntityID)
	assert.Equal(t, sale.ID, *entries[0].EntityID)
}
