package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
)

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	book, err := h.credits.List(r.Context(), shop, domain.CreditStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", book)
}

type paymentRequest struct {
	Paid *decimal.Decimal `json:"paid"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
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
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Paid == nil {
		h.respondError(w, r, &domain.ValidationError{Message: "paid amount is required"})
		return
	}
	credit, err := h.credits.RecordPayment(r.Context(), shop, id, *req.Paid)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Payment recorded", credit)
}
