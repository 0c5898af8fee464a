package api

import (
	"net/http"

	"pharmatrack/m/internal/auth"
	"pharmatrack/m/internal/tenant"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	session, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "Shop registered, free trial started", session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Login successful", session)
}

// logout has nothing to revoke: tokens are stateless and the client drops
// its copy.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, true, "Logged out")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, _ := tenant.IdentityFrom(r.Context())
	user, err := h.auth.Me(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	users, err := h.auth.ListUsers(r.Context(), shop)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	shop, err := shopID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req auth.NewUserInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	user, err := h.auth.CreateUser(r.Context(), shop, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "User created", user)
}

type userActiveRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
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
	var req userActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	identity, _ := tenant.IdentityFrom(r.Context())
	user, err := h.auth.SetUserActive(r.Context(), shop, identity.UserID, id, req.IsActive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "User updated", user)
}
