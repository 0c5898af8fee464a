package api

import (
	"net/http"

	"go.uber.org/zap"
)

const maxActivity = 100

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	database := "connected"
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn("health: database ping failed", zap.Error(err))
		database = "disconnected"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, envelope{
		Success: status == http.StatusOK,
		Data: map[string]any{
			"status":    http.StatusText(status),
			"database":  database,
			"env":       h.cfg.Env,
			"uptime":    since(h.started, now),
			"timestamp": now.UTC(),
		},
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondMessage(w, http.StatusServiceUnavailable, false, "database unavailable")
		return
	}
	respondMessage(w, http.StatusOK, true, "ready")
}

func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, true, "alive")
}

func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if limit == 0 || limit > maxActivity {
		limit = maxActivity
	}
	entries, err := h.activity.Recent(r.Context(), shop, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", entries)
}
