package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/tenant"
)

const maxIdempotencyKeyLen = 100

type SaleItemInput struct {
	MedicineID          int64            `json:"medicineId"`
	Qty                 int64            `json:"qty"`
	Price               *decimal.Decimal `json:"price"`
	ItemDiscountPercent decimal.Decimal  `json:"itemDiscountPercent"`
}

// SaleInput is a checkout request. The buyer is either an existing customer
// by id or an inline name and phone that is looked up or created.
type SaleInput struct {
	CustomerID     *int64          `json:"customerId"`
	Customer       *CustomerInput  `json:"customer"`
	Items          []SaleItemInput `json:"items"`
	GSTPercent     decimal.Decimal `json:"gstPercent"`
	Discount       decimal.Decimal `json:"discount"`
	Paid           decimal.Decimal `json:"paid"`
	IdempotencyKey string          `json:"-"`
}

func (in SaleInput) validate() error {
	if len(in.Items) == 0 {
		return &domain.ValidationError{Message: "a sale needs at least one item"}
	}
	for i, item := range in.Items {
		if item.MedicineID <= 0 {
			return domain.Invalid("item %d: medicine is required", i+1)
		}
		if item.Qty <= 0 {
			return domain.Invalid("item %d: quantity must be positive", i+1)
		}
		if item.Price != nil && item.Price.IsNegative() {
			return domain.Invalid("item %d: price cannot be negative", i+1)
		}
		if item.ItemDiscountPercent.IsNegative() || item.ItemDiscountPercent.GreaterThan(hundred) {
			return domain.Invalid("item %d: discount must be between 0 and 100 percent", i+1)
		}
	}
	if in.GSTPercent.IsNegative() {
		return &domain.ValidationError{Message: "gst cannot be negative"}
	}
	if in.Discount.IsNegative() {
		return &domain.ValidationError{Message: "discount cannot be negative"}
	}
	if in.Paid.IsNegative() {
		return &domain.ValidationError{Message: "paid amount cannot be negative"}
	}
	if len(in.IdempotencyKey) > maxIdempotencyKeyLen {
		return &domain.ValidationError{Message: "idempotency key is too long"}
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

type Sales struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
	log      *zap.Logger
}

func NewSales(st *store.Store, clk clock.Clock, rec *activity.Recorder, log *zap.Logger) *Sales {
	return &Sales{store: st, clock: clk, activity: rec, log: log.Named("sales")}
}

// Create records a sale. Stock of every item is taken atomically with the
// sale; if any item is short nothing is written. A sale with an unpaid
// balance opens a credit for its customer. Repeating a request with the same
// idempotency key returns the first sale with replayed set.
func (s *Sales) Create(ctx context.Context, shopID int64, in SaleInput) (sale domain.Sale, replayed bool, err error) {
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if err := in.validate(); err != nil {
		return domain.Sale{}, false, err
	}

	if in.IdempotencyKey != "" {
		if prior, found, err := s.byKey(ctx, shopID, in.IdempotencyKey); err != nil || found {
			return prior, found, err
		}
	}

	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		sale, err = s.create(ctx, q, shopID, in)
		return err
	})
	if err != nil {
		if in.IdempotencyKey != "" && database.IsDuplicateKey(err) {
			// A concurrent request with the same key won.
			prior, found, lookupErr := s.byKey(ctx, shopID, in.IdempotencyKey)
			if lookupErr == nil && found {
				return prior, true, nil
			}
		}
		return domain.Sale{}, false, err
	}

	s.log.Info("sale created",
		zap.Int64("shop_id", shopID),
		zap.Int64("sale_id", sale.ID),
		zap.String("final_total", sale.FinalTotal.StringFixed(2)),
		zap.Int("items", len(sale.Items)))
	s.activity.Record(ctx, shopID, activity.Entry{
		Action:   domain.ActionCreateSale,
		Entity:   "sale",
		EntityID: sale.ID,
		Details:  fmt.Sprintf("total %s, due %s", sale.FinalTotal.StringFixed(2), sale.Due.StringFixed(2)),
	})
	return sale, false, nil
}

func (s *Sales) byKey(ctx context.Context, shopID int64, key string) (sale domain.Sale, found bool, err error) {
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		sale, found, err = q.GetSaleByIdempotencyKey(ctx, shopID, key)
		return err
	})
	return sale, found, err
}

func (s *Sales) create(ctx context.Context, q *store.Queries, shopID int64, in SaleInput) (domain.Sale, error) {
	now := s.clock.Now()
	sale := domain.Sale{
		ShopID:     shopID,
		UserID:     tenant.UserID(ctx),
		GSTPercent: domain.Round2(in.GSTPercent),
		Discount:   domain.Round2(in.Discount),
		CreatedAt:  now,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		sale.IdempotencyKey = &key
	}

	customer, err := s.resolveCustomer(ctx, q, shopID, in)
	if err != nil {
		return domain.Sale{}, err
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
		sale.CustomerName, sale.CustomerPhone = customer.Name, customer.Phone
	}

	subtotal := decimal.Zero
	sale.Items = make([]domain.SaleItem, 0, len(in.Items))
	for _, item := range in.Items {
		med, err := q.GetMedicine(ctx, shopID, item.MedicineID)
		if err != nil {
			return domain.Sale{}, err
		}
		ok, err := q.DecrementStock(ctx, shopID, med.ID, item.Qty, now)
		if err != nil {
			return domain.Sale{}, err
		}
		if !ok {
			return domain.Sale{}, &domain.InsufficientStockError{Medicine: med.Name, Requested: item.Qty, Available: med.Stock}
		}
		price := med.SellingPrice
		if item.Price != nil {
			price = domain.Round2(*item.Price)
		}
		line := domain.SaleItem{
			MedicineID:          med.ID,
			Name:                med.Name,
			Qty:                 item.Qty,
			Price:               price,
			ItemDiscountPercent: domain.Round2(item.ItemDiscountPercent),
		}
		line.LineTotal = domain.LineTotal(line.Price, line.Qty, line.ItemDiscountPercent)
		subtotal = subtotal.Add(line.LineTotal)
		sale.Items = append(sale.Items, line)
	}

	sale.Subtotal = domain.Round2(subtotal)
	sale.GST = domain.Percent(sale.Subtotal, sale.GSTPercent)
	sale.FinalTotal = domain.Round2(sale.Subtotal.Add(sale.GST).Sub(sale.Discount))
	if sale.FinalTotal.IsNegative() {
		return domain.Sale{}, &domain.ValidationError{Message: "discount exceeds the sale total"}
	}
	sale.Paid = domain.Round2(in.Paid)
	sale.Due = domain.DueAmount(sale.FinalTotal, sale.Paid)
	if sale.Due.IsPositive() && customer == nil {
		return domain.Sale{}, &domain.ValidationError{Message: "a customer is required for a sale with a balance due"}
	}

	if err := q.InsertSale(ctx, &sale); err != nil {
		return domain.Sale{}, err
	}
	if sale.Due.IsPositive() {
		credit := domain.Credit{
			ShopID:      shopID,
			CustomerID:  customer.ID,
			SaleID:      sale.ID,
			TotalAmount: sale.FinalTotal,
			Paid:        sale.Paid,
			Due:         sale.Due,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := q.UpsertCredit(ctx, &credit); err != nil {
			return domain.Sale{}, err
		}
	}
	return sale, nil
}

func (s *Sales) resolveCustomer(ctx context.Context, q *store.Queries, shopID int64, in SaleInput) (*domain.Customer, error) {
	if in.CustomerID != nil && *in.CustomerID > 0 {
		c, err := q.GetCustomer(ctx, shopID, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	if in.Customer == nil || (strings.TrimSpace(in.Customer.Phone) == "" && strings.TrimSpace(in.Customer.Name) == "") {
		return nil, nil
	}
	ci, err := in.Customer.normalized()
	if err != nil {
		return nil, err
	}
	c, _, err := findOrCreateCustomer(ctx, q, shopID, ci, s.clock)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a page of sales, newest first.
func (s *Sales) List(ctx context.Context, shopID int64, limit, offset int) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		sales, err = q.ListSales(ctx, shopID, limit, offset)
		return err
	})
	return sales, err
}

func (s *Sales) Get(ctx context.Context, shopID, id int64) (domain.Sale, error) {
	var sale domain.Sale
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		sale, err = q.GetSale(ctx, shopID, id)
		return err
	})
	return sale, err
}
