package api

import (
	"errors"
	"net/http"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/service"
)

const headerIdempotencyKey = "Idempotency-Key"

// createSale answers 201 for a new sale and 200 when the Idempotency-Key
// matched an earlier one.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req service.SaleInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	req.IdempotencyKey = r.Header.Get(headerIdempotencyKey)

	sale, replayed, err := h.sales.Create(r.Context(), shop, req)
	if err != nil {
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			h.metrics.StockConflict()
		}
		h.respondError(w, r, err)
		return
	}
	if replayed {
		respondData(w, http.StatusOK, "Sale already recorded", sale)
		return
	}
	h.metrics.SaleCreated()
	respondData(w, http.StatusCreated, "Sale recorded", sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	sales, err := h.sales.List(r.Context(), shop, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	sale, err := h.sales.Get(r.Context(), shop, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", sale)
}
