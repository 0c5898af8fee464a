package api

import (
	"net/http"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/subscription"
)

const expiringSoonDays = 7

type subscriptionView struct {
	subscription.Snapshot
	WillExpireSoon bool `json:"willExpireSoon"`
}

func newSubscriptionView(snap subscription.Snapshot) subscriptionView {
	return subscriptionView{
		Snapshot:       snap,
		WillExpireSoon: snap.Allowed && snap.DaysRemaining > 0 && snap.DaysRemaining <= expiringSoonDays,
	}
}

func (h *Handler) plans(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", map[string]any{
		"plans":     subscription.Plans(),
		"trialDays": h.subs.TrialDays(),
	})
}

// subscriptionStatus reports the shop's subscription, persisting an expiry
// the clock has already passed.
func (h *Handler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	snap, err := h.subs.Refresh(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", newSubscriptionView(snap))
}

type activateRequest struct {
	PlanType domain.PlanType `json:"planType"`
}

func (h *Handler) activatePlan(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req activateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	snap, err := h.subs.Upgrade(r.Context(), shop, req.PlanType)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Subscription activated", newSubscriptionView(snap))
}

func (h *Handler) startTrial(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	snap, err := h.subs.StartTrial(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Free trial started", newSubscriptionView(snap))
}
