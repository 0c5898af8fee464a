package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"pharmatrack/m/internal/service"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeJSON = "application/json; charset=utf-8"
)

func (h *Handler) exportSalesCSV(w http.ResponseWriter, r *http.Request) {
	h.exportSales(w, r, "csv", contentTypeCSV, service.SalesReport.WriteCSV)
}

func (h *Handler) exportSalesXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportSales(w, r, "xlsx", contentTypeXLSX, service.SalesReport.WriteXLSX)
}

// exportSales renders the whole report before any header is written.
func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request, ext, contentType string,
	write func(service.SalesReport, io.Writer) error) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	report, err := h.export.Sales(r.Context(), shop, ext)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := write(report, &buf); err != nil {
		h.respondError(w, r, fmt.Errorf("render sales %s: %w", ext, err))
		return
	}
	h.attachment(w, r, report.FileName("sales", ext), contentType, buf.Bytes())
}

func (h *Handler) fullBackup(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	backup, err := h.export.Backup(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	body, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		h.respondError(w, r, fmt.Errorf("encode backup: %w", err))
		return
	}
	h.attachment(w, r, backup.FileName(), contentTypeJSON, body)
}

func (h *Handler) attachment(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Warn("write download", zap.String("file", name), zap.Error(err))
	}
}
