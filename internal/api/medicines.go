package api

import (
	"io"
	"net/http"
	"strings"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/service"
)

const maxImportBytes = 5 << 20

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, offset, err := page(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	medicines, err := h.medicines.Search(r.Context(), shop, searchText(r), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", medicines)
}

func (h *Handler) upsertMedicine(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req service.MedicineInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	medicine, created, err := h.medicines.Upsert(r.Context(), shop, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !created {
		respondData(w, http.StatusOK, "Stock added to existing medicine", medicine)
		return
	}
	respondData(w, http.StatusCreated, "Medicine added", medicine)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
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
	var req service.MedicineInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	medicine, err := h.medicines.Update(r.Context(), shop, id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Medicine updated", medicine)
}

type addStockRequest struct {
	Qty    int64  `json:"qty"`
	Expiry string `json:"expiry"`
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
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
	var req addStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	medicine, err := h.medicines.AddStock(r.Context(), shop, id, req.Qty, req.Expiry)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Stock updated", medicine)
}

func (h *Handler) expiryAlerts(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	days, err := queryInt(r, "days", service.DefaultExpiryWindowDays)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	medicines, err := h.medicines.ExpiryAlerts(r.Context(), shop, days)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", medicines)
}

// importMedicines takes a CSV either as the "file" part of a multipart form
// or as the raw request body.
func (h *Handler) importMedicines(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.respondError(w, r, &domain.ValidationError{Message: "upload a CSV in the \"file\" field"})
			return
		}
		defer file.Close()
		src = file
	}
	result, err := h.medicines.Import(r.Context(), shop, src)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Medicines imported", result)
}
