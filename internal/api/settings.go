package api

import (
	"net/http"

	"pharmatrack/m/internal/service"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	setting, err := h.settings.Get(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", setting)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req service.SettingInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	setting, err := h.settings.Update(r.Context(), shop, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Settings updated", setting)
}
