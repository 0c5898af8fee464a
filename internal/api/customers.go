package api

import (
	"net/http"

	"pharmatrack/m/internal/service"
)

func (h *Handler) searchCustomers(w http.ResponseWriter, r *http.Request) {
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
	customers, err := h.customers.Search(r.Context(), shop, searchText(r), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", customers)
}

// createCustomer answers 201 for a new customer and 200 when the phone
// already belonged to one.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req service.CustomerInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	customer, created, err := h.customers.Create(r.Context(), shop, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !created {
		respondData(w, http.StatusOK, "Customer already exists", customer)
		return
	}
	respondData(w, http.StatusCreated, "Customer created", customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
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
	var req service.CustomerInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	customer, err := h.customers.Update(r.Context(), shop, id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Customer updated", customer)
}

func (h *Handler) creditCustomers(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	customers, err := h.customers.WithCredit(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", customers)
}

func (h *Handler) customerProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, "", profile)
}

func (h *Handler) customerSales(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, "", profile.Sales)
}

func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (service.CustomerProfile, bool) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return service.CustomerProfile{}, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return service.CustomerProfile{}, false
	}
	profile, err := h.customers.Profile(r.Context(), shop, id)
	if err != nil {
		h.respondError(w, r, err)
		return service.CustomerProfile{}, false
	}
	return profile, true
}
