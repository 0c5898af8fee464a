package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/seed"
	"pharmatrack/m/internal/store"
)

// DefaultExpiryWindowDays is the look-ahead of expiry alerts when the caller
// gives none.
const DefaultExpiryWindowDays = 30

type MedicineInput struct {
	Name         string          `json:"name"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int64           `json:"stock"`
	Expiry       string          `json:"expiry"`
}

func (in MedicineInput) normalized() (MedicineInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Expiry = strings.TrimSpace(in.Expiry)
	if in.Name == "" {
		return in, &domain.ValidationError{Message: "medicine name is required"}
	}
	if in.MRP.IsNegative() || in.SellingPrice.IsNegative() {
		return in, &domain.ValidationError{Message: "prices cannot be negative"}
	}
	if in.Stock < 0 {
		return in, &domain.ValidationError{Message: "stock cannot be negative"}
	}
	if err := validExpiry(in.Expiry); err != nil {
		return in, err
	}
	in.MRP = domain.Round2(in.MRP)
	in.SellingPrice = domain.Round2(in.SellingPrice)
	return in, nil
}

func validExpiry(expiry string) error {
	if expiry == "" {
		return nil
	}
	if _, err := time.Parse(domain.ExpiryLayout, expiry); err != nil {
		return domain.Invalid("expiry must be a YYYY-MM-DD date, got %q", expiry)
	}
	return nil
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped []seed.RowProblem `json:"skipped"`
}

type Medicines struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
}

func NewMedicines(st *store.Store, clk clock.Clock, rec *activity.Recorder) *Medicines {
	return &Medicines{store: st, clock: clk, activity: rec}
}

func (s *Medicines) Search(ctx context.Context, shopID int64, text string, limit, offset int) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		medicines, err = q.SearchMedicines(ctx, shopID, text, limit, offset)
		return err
	})
	return medicines, err
}

// Upsert adds a medicine to the catalog. When the shop already stocks a
// medicine with the same name (ignoring case) the stock is added to it and
// its prices and expiry are refreshed instead.
func (s *Medicines) Upsert(ctx context.Context, shopID int64, in MedicineInput) (medicine domain.Medicine, created bool, err error) {
	if in, err = in.normalized(); err != nil {
		return domain.Medicine{}, false, err
	}
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		medicine, created, err = s.upsert(ctx, q, shopID, in)
		return err
	})
	if err != nil {
		return domain.Medicine{}, false, err
	}
	action := domain.ActionUpdateMedicine
	if created {
		action = domain.ActionCreateMedicine
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: action, Entity: "medicine", EntityID: medicine.ID, Details: medicine.Name})
	return medicine, created, nil
}

func (s *Medicines) upsert(ctx context.Context, q *store.Queries, shopID int64, in MedicineInput) (domain.Medicine, bool, error) {
	now := s.clock.Now()
	existing, err := q.FindMedicineByName(ctx, shopID, in.Name)
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		m := domain.Medicine{
			ShopID:       shopID,
			Name:         in.Name,
			MRP:          in.MRP,
			SellingPrice: in.SellingPrice,
			Stock:        in.Stock,
			Expiry:       in.Expiry,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := q.InsertMedicine(ctx, &m); err != nil {
			return domain.Medicine{}, false, err
		}
		return m, true, nil
	case err != nil:
		return domain.Medicine{}, false, err
	}

	existing.Stock += in.Stock
	if in.MRP.IsPositive() {
		existing.MRP = in.MRP
	}
	if in.SellingPrice.IsPositive() {
		existing.SellingPrice = in.SellingPrice
	}
	if in.Expiry != "" {
		existing.Expiry = in.Expiry
	}
	existing.UpdatedAt = now
	if err := q.UpdateMedicine(ctx, existing); err != nil {
		return domain.Medicine{}, false, err
	}
	return existing, false, nil
}

// Update replaces the editable fields of a medicine.
func (s *Medicines) Update(ctx context.Context, shopID, id int64, in MedicineInput) (domain.Medicine, error) {
	in, err := in.normalized()
	if err != nil {
		return domain.Medicine{}, err
	}
	var medicine domain.Medicine
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if medicine, err = q.GetMedicine(ctx, shopID, id); err != nil {
			return err
		}
		if other, err := q.FindMedicineByName(ctx, shopID, in.Name); err == nil && other.ID != id {
			return &domain.ConflictError{Message: fmt.Sprintf("medicine %q already exists", other.Name)}
		}
		medicine.Name = in.Name
		medicine.MRP = in.MRP
		medicine.SellingPrice = in.SellingPrice
		medicine.Stock = in.Stock
		medicine.Expiry = in.Expiry
		medicine.UpdatedAt = s.clock.Now()
		return q.UpdateMedicine(ctx, medicine)
	})
	if err != nil {
		return domain.Medicine{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionUpdateMedicine, Entity: "medicine", EntityID: id, Details: medicine.Name})
	return medicine, nil
}

// AddStock receives qty more units of a medicine, optionally with a new
// expiry date.
func (s *Medicines) AddStock(ctx context.Context, shopID, id, qty int64, expiry string) (domain.Medicine, error) {
	expiry = strings.TrimSpace(expiry)
	if qty <= 0 {
		return domain.Medicine{}, &domain.ValidationError{Message: "quantity must be positive"}
	}
	if err := validExpiry(expiry); err != nil {
		return domain.Medicine{}, err
	}
	var medicine domain.Medicine
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		if err := q.AddStock(ctx, shopID, id, qty, expiry, s.clock.Now()); err != nil {
			return err
		}
		var err error
		medicine, err = q.GetMedicine(ctx, shopID, id)
		return err
	})
	if err != nil {
		return domain.Medicine{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{
		Action:   domain.ActionUpdateMedicine,
		Entity:   "medicine",
		EntityID: id,
		Details:  fmt.Sprintf("added %d units of %s", qty, medicine.Name),
	})
	return medicine, nil
}

// ExpiryAlerts lists in-stock medicines expiring within days from today.
func (s *Medicines) ExpiryAlerts(ctx context.Context, shopID int64, days int) ([]domain.Medicine, error) {
	if days <= 0 {
		days = DefaultExpiryWindowDays
	}
	cutoff := s.clock.Now().AddDate(0, 0, days).Format(domain.ExpiryLayout)
	var medicines []domain.Medicine
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		medicines, err = q.ExpiringMedicines(ctx, shopID, cutoff)
		return err
	})
	return medicines, err
}

// Import upserts every valid row of a medicine CSV in one transaction. Rows
// that do not parse or validate are reported and skipped.
func (s *Medicines) Import(ctx context.Context, shopID int64, r io.Reader) (ImportResult, error) {
	rows, problems, err := seed.ReadMedicines(r)
	if err != nil {
		return ImportResult{}, &domain.ValidationError{Message: err.Error()}
	}
	result := ImportResult{Skipped: problems}
	err = s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		for _, row := range rows {
			in, err := MedicineInput{
				Name:         row.Name,
				MRP:          row.MRP,
				SellingPrice: row.SellingPrice,
				Stock:        row.Stock,
				Expiry:       row.Expiry,
			}.normalized()
			if err != nil {
				result.Skipped = append(result.Skipped, seed.RowProblem{Line: row.Line, Reason: err.Error()})
				continue
			}
			_, created, err := s.upsert(ctx, q, shopID, in)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{
		Action:  domain.ActionImportMedicines,
		Entity:  "medicine",
		Details: fmt.Sprintf("imported %d new, %d updated, %d skipped", result.Created, result.Updated, len(result.Skipped)),
	})
	return result, nil
}
