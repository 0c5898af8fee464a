package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pharmatrack/m/domain"
)

const maxBodyBytes = 1 << 20

// envelope wraps every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Message: "request body is required"}
		}
		return &domain.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, success bool, message string) {
	respondJSON(w, status, envelope{Success: success, Message: message})
}

// respondError maps a service error onto a status and an envelope. Errors
// outside the domain taxonomy are logged and reported generically.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		authErr    *domain.AuthError
		forbidden  *domain.ForbiddenError
		subErr     *domain.SubscriptionError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		short      *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		respondMessage(w, http.StatusBadRequest, false, validation.Message)
	case errors.As(err, &authErr):
		respondMessage(w, http.StatusUnauthorized, false, authErr.Message)
	case errors.As(err, &forbidden):
		respondMessage(w, http.StatusForbidden, false, forbidden.Message)
	case errors.As(err, &subErr):
		respondJSON(w, http.StatusForbidden, envelope{
			Message: subErr.Message,
			Data:    map[string]domain.SubscriptionStatus{"subscriptionStatus": subErr.Status},
		})
	case errors.As(err, &notFound):
		respondMessage(w, http.StatusNotFound, false, capitalize(notFound.Error()))
	case errors.As(err, &conflict):
		respondMessage(w, http.StatusBadRequest, false, conflict.Message)
	case errors.As(err, &short):
		respondJSON(w, http.StatusBadRequest, envelope{
			Message: fmt.Sprintf("Insufficient stock for %s", short.Medicine),
			Data: map[string]any{
				"medicine":  short.Medicine,
				"requested": short.Requested,
				"available": short.Available,
			},
		})
	default:
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg := "internal server error"
		if !h.cfg.IsProduction() {
			msg = err.Error()
		}
		respondMessage(w, http.StatusInternalServerError, false, msg)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid("%s must be a non-negative integer", name)
	}
	return n, nil
}

// page reads limit and offset. A missing limit means no limit.
func page(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// searchText reads q, falling back to search.
func searchText(r *http.Request) string {
	if q := r.URL.Query().Get("q"); q != "" {
		return q
	}
	return r.URL.Query().Get("search")
}
