package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

const (
	salesSheet      = "Sales Report"
	exportTimestamp = "2006-01-02 15:04"
	walkInCustomer  = "Walk-in Customer"
)

var salesHeader = []string{"Invoice", "Customer Name", "Phone", "Date", "Subtotal", "Discount", "GST", "Final Total", "Paid", "Due"}

var salesColumnWidths = []float64{12, 22, 15, 18, 12, 12, 10, 14, 12, 12}

// SalesReport is every sale of a shop, newest first, ready to be written out.
type SalesReport struct {
	Setting domain.Setting
	Sales   []domain.Sale
	At      time.Time
}

// FileName names a download after the store, e.g. "city-pharmacy-sales-2026-10-15.csv".
func (r SalesReport) FileName(kind, ext string) string {
	return fileName(r.Setting.StoreName, kind, r.At, ext)
}

func (r SalesReport) rows() [][]string {
	rows := make([][]string, 0, len(r.Sales))
	for _, s := range r.Sales {
		name, phone := walkInCustomer, "N/A"
		if s.CustomerID != nil {
			name, phone = s.CustomerName, s.CustomerPhone
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s-%06d", r.Setting.InvoicePrefix, s.ID),
			name,
			phone,
			s.CreatedAt.UTC().Format(exportTimestamp),
			s.Subtotal.StringFixed(2),
			s.Discount.StringFixed(2),
			s.GST.StringFixed(2),
			s.FinalTotal.StringFixed(2),
			s.Paid.StringFixed(2),
			s.Due.StringFixed(2),
		})
	}
	return rows
}

// WriteCSV writes the report with a header row.
func (r SalesReport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(r.rows()); err != nil {
		return fmt.Errorf("write sales csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the report as a single sheet workbook.
func (r SalesReport) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), salesSheet); err != nil {
		return err
	}
	for i, width := range salesColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(salesSheet, col, col, width); err != nil {
			return err
		}
	}
	if err := setRow(f, 1, salesHeader); err != nil {
		return err
	}
	for i, row := range r.rows() {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write sales workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(salesSheet, cell, &cells)
}

// Backup is a full JSON dump of one shop's records.
type Backup struct {
	ExportDate   time.Time         `json:"exportDate"`
	Settings     domain.Setting    `json:"settings"`
	Customers    []domain.Customer `json:"customers"`
	Medicines    []domain.Medicine `json:"medicines"`
	Sales        []domain.Sale     `json:"sales"`
	Credits      []domain.Credit   `json:"credits"`
	TotalRecords map[string]int    `json:"totalRecords"`
}

func (b Backup) FileName() string {
	return fileName(b.Settings.StoreName, "backup", b.ExportDate, "json")
}

type Export struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
}

func NewExport(st *store.Store, clk clock.Clock, rec *activity.Recorder) *Export {
	return &Export{store: st, clock: clk, activity: rec}
}

// Sales loads the report; format only labels the activity entry.
func (e *Export) Sales(ctx context.Context, shopID int64, format string) (SalesReport, error) {
	report := SalesReport{At: e.clock.Now()}
	err := e.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if report.Setting, err = ensureSetting(ctx, q, shopID, e.clock); err != nil {
			return err
		}
		report.Sales, err = q.ListAllSales(ctx, shopID)
		return err
	})
	if err != nil {
		return SalesReport{}, err
	}
	e.activity.Record(ctx, shopID, activity.Entry{
		Action:  domain.ActionExport,
		Entity:  "sale",
		Details: fmt.Sprintf("sales %s export, %d rows", format, len(report.Sales)),
	})
	return report, nil
}

func (e *Export) Backup(ctx context.Context, shopID int64) (Backup, error) {
	b := Backup{ExportDate: e.clock.Now()}
	err := e.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if b.Settings, err = ensureSetting(ctx, q, shopID, e.clock); err != nil {
			return err
		}
		if b.Customers, err = q.ListCustomers(ctx, shopID); err != nil {
			return err
		}
		if err = q.FillCustomerTotals(ctx, shopID, b.Customers); err != nil {
			return err
		}
		if b.Medicines, err = q.ListMedicines(ctx, shopID); err != nil {
			return err
		}
		if b.Sales, err = q.ListAllSales(ctx, shopID); err != nil {
			return err
		}
		b.Credits, err = q.ListCredits(ctx, shopID, "")
		return err
	})
	if err != nil {
		return Backup{}, err
	}
	b.TotalRecords = map[string]int{
		"customers": len(b.Customers),
		"medicines": len(b.Medicines),
		"sales":     len(b.Sales),
		"credits":   len(b.Credits),
	}
	e.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionExport, Entity: "shop", EntityID: shopID, Details: "full backup"})
	return b, nil
}

func fileName(storeName, kind string, at time.Time, ext string) string {
	base := slug.Make(storeName)
	if base == "" {
		base = "pharmatrack"
	}
	return fmt.Sprintf("%s-%s-%s.%s", base, kind, at.UTC().Format(domain.ExpiryLayout), ext)
}
