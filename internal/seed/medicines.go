// Package seed reads medicine catalogs from CSV.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MedicineRow is one parsed catalog line. Line counts from 1 at the header.
type MedicineRow struct {
	Line         int
	Name         string
	MRP          decimal.Decimal
	SellingPrice decimal.Decimal
	Stock        int64
	Expiry       string
}

// RowProblem explains why a line was skipped.
type RowProblem struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

var columnAliases = map[string]string{
	"name":          "name",
	"medicine":      "name",
	"brand_name":    "name",
	"mrp":           "mrp",
	"sellingprice":  "sellingPrice",
	"selling_price": "sellingPrice",
	"price":         "sellingPrice",
	"stock":         "stock",
	"qty":           "stock",
	"quantity":      "stock",
	"expiry":        "expiry",
	"expiry_date":   "expiry",
}

// ReadMedicines parses a catalog with a header row. Columns are matched by
// name in any order; only name is required. Malformed lines are returned as
// problems, the rest as rows.
func ReadMedicines(r io.Reader) ([]MedicineRow, []RowProblem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("medicine file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read medicine header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := columnAliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, errors.New("medicine file has no name column")
	}

	rows := []MedicineRow{}
	problems := []RowProblem{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			problems = append(problems, RowProblem{Line: line, Reason: err.Error()})
			continue
		}
		row, err := parseRow(record, cols)
		if err != nil {
			problems = append(problems, RowProblem{Line: line, Reason: err.Error()})
			continue
		}
		if row.Name == "" {
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, problems, nil
}

func parseRow(record []string, cols map[string]int) (MedicineRow, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := MedicineRow{Name: field("name"), Expiry: field("expiry")}
	var err error
	if row.MRP, err = parseAmount(field("mrp")); err != nil {
		return row, fmt.Errorf("mrp: %w", err)
	}
	if row.SellingPrice, err = parseAmount(field("sellingPrice")); err != nil {
		return row, fmt.Errorf("selling price: %w", err)
	}
	if s := field("stock"); s != "" {
		if row.Stock, err = strconv.ParseInt(s, 10, 64); err != nil {
			return row, fmt.Errorf("stock %q is not a whole number", s)
		}
	}
	return row, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
