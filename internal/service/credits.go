package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

// CreditBook is the shop's credit ledger with the store name printed on it.
type CreditBook struct {
	StoreName string          `json:"storeName"`
	Credits   []domain.Credit `json:"credits"`
}

type Credits struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
}

func NewCredits(st *store.Store, clk clock.Clock, rec *activity.Recorder) *Credits {
	return &Credits{store: st, clock: clk, activity: rec}
}

// List returns the shop's credits, optionally filtered by status.
func (s *Credits) List(ctx context.Context, shopID int64, status domain.CreditStatus) (CreditBook, error) {
	switch status {
	case "", domain.CreditPending, domain.CreditPaid:
	default:
		return CreditBook{}, domain.Invalid("unknown credit status %q", status)
	}
	var book CreditBook
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		setting, err := ensureSetting(ctx, q, shopID, s.clock)
		if err != nil {
			return err
		}
		credits, err := q.ListCredits(ctx, shopID, status)
		if err != nil {
			return err
		}
		book = CreditBook{StoreName: setting.StoreName, Credits: credits}
		return nil
	})
	return book, err
}

// RecordPayment sets the total amount paid so far against a credit. Due and
// status follow, and the originating sale is updated to match.
func (s *Credits) RecordPayment(ctx context.Context, shopID, id int64, paid decimal.Decimal) (domain.Credit, error) {
	if paid.IsNegative() {
		return domain.Credit{}, &domain.ValidationError{Message: "paid amount cannot be negative"}
	}
	var credit domain.Credit
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if credit, err = q.GetCredit(ctx, shopID, id); err != nil {
			return err
		}
		if domain.Round2(paid).GreaterThan(credit.TotalAmount) {
			return &domain.ValidationError{Message: "paid amount cannot exceed the credit total"}
		}
		credit.ApplyPayment(domain.Round2(paid))
		credit.UpdatedAt = s.clock.Now()
		if err := q.UpdateCreditPayment(ctx, &credit); err != nil {
			return err
		}
		return q.UpdateSalePayment(ctx, shopID, credit.SaleID, credit.Paid, credit.Due)
	})
	if err != nil {
		return domain.Credit{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{
		Action:   domain.ActionUpdateCredit,
		Entity:   "credit",
		EntityID: credit.ID,
		Details:  fmt.Sprintf("paid %s, due %s", credit.Paid.StringFixed(2), credit.Due.StringFixed(2)),
	})
	return credit, nil
}
