package api

import "net/http"

func (h *Handler) dashboardCards(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	cards, err := h.dashboard.Cards(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", cards)
}

func (h *Handler) monthlyRevenue(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	revenue, err := h.dashboard.MonthlyRevenue(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", revenue)
}

func (h *Handler) topMedicines(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	top, err := h.dashboard.TopMedicines(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", top)
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	stats, err := h.dashboard.Stats(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}
