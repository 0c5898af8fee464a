package api

import "net/http"

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.subs.ListShops(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", shops)
}

func (h *Handler) suspendShop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	snap, err := h.subs.Suspend(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Shop suspended", snap)
}
