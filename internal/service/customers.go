// Package service holds the shop-scoped business operations. Every method
// takes the caller's bound shop id and never reads or writes another shop's
// rows; a record of another shop is reported as not found.
package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

const maxPhoneLen = 20

type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (in CustomerInput) normalized() (CustomerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" {
		return in, &domain.ValidationError{Message: "customer name is required"}
	}
	if in.Phone == "" {
		return in, &domain.ValidationError{Message: "customer phone is required"}
	}
	if len(in.Phone) > maxPhoneLen {
		return in, &domain.ValidationError{Message: "customer phone is too long"}
	}
	return in, nil
}

// CustomerProfile is a customer with their purchase history.
type CustomerProfile struct {
	Customer domain.Customer `json:"customer"`
	Sales    []domain.Sale   `json:"sales"`
}

type Customers struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
}

func NewCustomers(st *store.Store, clk clock.Clock, rec *activity.Recorder) *Customers {
	return &Customers{store: st, clock: clk, activity: rec}
}

// Search matches name or phone, ignoring case. A zero limit returns every
// match.
func (s *Customers) Search(ctx context.Context, shopID int64, text string, limit, offset int) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if customers, err = q.SearchCustomers(ctx, shopID, text, limit, offset); err != nil {
			return err
		}
		return q.FillCustomerTotals(ctx, shopID, customers)
	})
	return customers, err
}

// Create returns the shop's existing customer with the same phone, or a new
// one. created reports which happened.
func (s *Customers) Create(ctx context.Context, shopID int64, in CustomerInput) (customer domain.Customer, created bool, err error) {
	in, err = in.normalized()
	if err != nil {
		return domain.Customer{}, false, err
	}
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		customer, created, err = findOrCreateCustomer(ctx, q, shopID, in, s.clock)
		if err != nil {
			return err
		}
		customers := []domain.Customer{customer}
		if err := q.FillCustomerTotals(ctx, shopID, customers); err != nil {
			return err
		}
		customer = customers[0]
		return nil
	})
	if err != nil {
		return domain.Customer{}, false, err
	}
	if created {
		s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionCreateCustomer, Entity: "customer", EntityID: customer.ID, Details: customer.Name})
	}
	return customer, created, nil
}

// Update edits a customer. Moving to a phone another customer of the shop
// already uses is a conflict.
func (s *Customers) Update(ctx context.Context, shopID, id int64, in CustomerInput) (domain.Customer, error) {
	in, err := in.normalized()
	if err != nil {
		return domain.Customer{}, err
	}
	var customer domain.Customer
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if customer, err = q.GetCustomer(ctx, shopID, id); err != nil {
			return err
		}
		if in.Phone != customer.Phone {
			if other, err := q.GetCustomerByPhone(ctx, shopID, in.Phone); err == nil && other.ID != id {
				return &domain.ConflictError{Message: "another customer already uses this phone"}
			}
		}
		customer.Name, customer.Phone, customer.Address = in.Name, in.Phone, in.Address
		if err := q.UpdateCustomer(ctx, customer, s.clock.Now()); err != nil {
			return err
		}
		customers := []domain.Customer{customer}
		if err := q.FillCustomerTotals(ctx, shopID, customers); err != nil {
			return err
		}
		customer = customers[0]
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionUpdateCustomer, Entity: "customer", EntityID: id, Details: customer.Name})
	return customer, nil
}

// Profile returns the customer and their sales, newest first.
func (s *Customers) Profile(ctx context.Context, shopID, id int64) (CustomerProfile, error) {
	var profile CustomerProfile
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		customer, err := q.GetCustomer(ctx, shopID, id)
		if err != nil {
			return err
		}
		customers := []domain.Customer{customer}
		if err := q.FillCustomerTotals(ctx, shopID, customers); err != nil {
			return err
		}
		sales, err := q.ListCustomerSales(ctx, shopID, id)
		if err != nil {
			return err
		}
		profile = CustomerProfile{Customer: customers[0], Sales: sales}
		return nil
	})
	return profile, err
}

// WithCredit lists customers that still owe money.
func (s *Customers) WithCredit(ctx context.Context, shopID int64) ([]domain.Customer, error) {
	var owing []domain.Customer
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		all, err := q.ListCustomers(ctx, shopID)
		if err != nil {
			return err
		}
		if err := q.FillCustomerTotals(ctx, shopID, all); err != nil {
			return err
		}
		owing = []domain.Customer{}
		for _, c := range all {
			if c.TotalDue.IsPositive() {
				owing = append(owing, c)
			}
		}
		return nil
	})
	return owing, err
}

func findOrCreateCustomer(ctx context.Context, q *store.Queries, shopID int64, in CustomerInput, clk clock.Clock) (domain.Customer, bool, error) {
	c := domain.Customer{
		ShopID:       shopID,
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		CustomerCode: "CUST-" + ulid.Make().String(),
		CreatedAt:    clk.Now(),
	}
	created, err := q.InsertCustomerIfAbsent(ctx, &c)
	if err != nil {
		return domain.Customer{}, false, err
	}
	return c, created, nil
}
