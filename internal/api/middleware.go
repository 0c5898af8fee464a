package api

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/tenant"
)

const (
	headerRequestID   = "X-Request-ID"
	headerShopID      = "X-Shop-ID"
	headerAccessToken = "X-Access-Token"
)

// requestID tags the request with the caller's X-Request-ID or a new uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type traceKey struct{}

// trace collects who a request acted as, filled in by the gate for the
// access log.
type trace struct {
	userID int64
	shopID int64
}

func traceFrom(ctx context.Context) *trace {
	if t, ok := ctx.Value(traceKey{}).(*trace); ok {
		return t
	}
	return &trace{}
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.clock.Now()
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		tr := &trace{}
		ctx := tenant.WithClientIP(r.Context(), ip)
		r = r.WithContext(context.WithValue(ctx, traceKey{}, tr))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := h.clock.Now().Sub(start)
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveRequest(r.Method, route, status, elapsed)

		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", elapsed),
			zap.String("ip", ip),
		}
		if tr.shopID > 0 {
			fields = append(fields, zap.Int64("shop_id", tr.shopID))
		}
		if tr.userID > 0 {
			fields = append(fields, zap.Int64("user_id", tr.userID))
		}
		switch {
		case status >= 500:
			h.log.Error("request", fields...)
		case status >= 400:
			h.log.Warn("request", fields...)
		default:
			h.log.Info("request", fields...)
		}
	})
}

// recoverer turns a panic into a logged 500 envelope.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.log.Error("panic serving request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				respondMessage(w, http.StatusInternalServerError, false, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) limitReached(name, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.metrics.RateLimited(name)
		respondMessage(w, http.StatusTooManyRequests, false, message)
	}
}

func (h *Handler) limiterFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("rate limiter failed", zap.String("path", r.URL.Path), zap.Error(err))
	respondMessage(w, http.StatusServiceUnavailable, false, "service temporarily unavailable")
}

// bearerToken reads the credential from Authorization or X-Access-Token.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return strings.TrimSpace(r.Header.Get(headerAccessToken))
}

// authenticate verifies the token, checks its user is still active and puts
// the caller's identity on the context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.tokens.Verify(bearerToken(r))
		if err != nil {
			h.metrics.GateRejected("token")
			h.respondError(w, r, err)
			return
		}
		if err := h.auth.EnsureActive(r.Context(), identity.UserID); err != nil {
			h.metrics.GateRejected("user")
			h.respondError(w, r, err)
			return
		}
		traceFrom(r.Context()).userID = identity.UserID
		next.ServeHTTP(w, r.WithContext(tenant.WithIdentity(r.Context(), identity)))
	})
}

// resolveTenant binds the shop the request acts on: the token's shop, or
// for a superadmin the shop named by X-Shop-ID, if any.
func (h *Handler) resolveTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := tenant.IdentityFrom(r.Context())
		if !ok {
			h.respondError(w, r, &domain.AuthError{Message: "authentication required"})
			return
		}
		ctx := r.Context()
		switch {
		case identity.IsSuperAdmin():
			if raw := strings.TrimSpace(r.Header.Get(headerShopID)); raw != "" {
				shopID, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || shopID <= 0 {
					h.respondError(w, r, domain.Invalid("invalid %s header", headerShopID))
					return
				}
				ctx = tenant.WithShop(ctx, shopID)
				traceFrom(ctx).shopID = shopID
			}
		case identity.ShopID > 0:
			ctx = tenant.WithShop(ctx, identity.ShopID)
			traceFrom(ctx).shopID = identity.ShopID
		default:
			h.metrics.GateRejected("tenant")
			h.respondError(w, r, &domain.AuthError{Message: "token is not bound to a shop"})
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSubscription stops requests of shops whose subscription does not
// allow operating. Superadmins pass.
func (h *Handler) requireSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := tenant.IdentityFrom(r.Context())
		if identity.IsSuperAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		shopID, err := tenant.RequireShop(r.Context())
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if _, err := h.subs.Check(r.Context(), shopID); err != nil {
			h.metrics.GateRejected("subscription")
			h.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorize checks the caller's role against the policy.
func (h *Handler) authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := tenant.IdentityFrom(r.Context())
			if !ok {
				h.respondError(w, r, &domain.AuthError{Message: "authentication required"})
				return
			}
			if err := h.policy.Authorize(identity.Role, object, action); err != nil {
				h.metrics.GateRejected("role")
				h.respondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// shopID returns the bound shop of a request that passed resolveTenant.
func shopID(r *http.Request) (int64, error) {
	return tenant.RequireShop(r.Context())
}

func since(start, now time.Time) float64 {
	return now.Sub(start).Seconds()
}
