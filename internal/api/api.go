// Package api is the HTTP surface: routing, the request gate and the JSON
// envelope around the services.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/auth"
	"pharmatrack/m/internal/authz"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/config"
	"pharmatrack/m/internal/metrics"
	"pharmatrack/m/internal/ratelimit"
	"pharmatrack/m/internal/service"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/subscription"
)

// Params are the Handler's dependencies. LimiterStore may be nil, which
// turns rate limiting off.
type Params struct {
	fx.In

	Config    config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Store     *store.Store
	Tokens    *auth.Tokens
	Auth      *auth.Service
	Subs      *subscription.Service
	Policy    *authz.Policy
	Activity  *activity.Recorder
	Customers *service.Customers
	Medicines *service.Medicines
	Sales     *service.Sales
	Credits   *service.Credits
	Settings  *service.Settings
	Dashboard *service.Dashboard
	Export    *service.Export
	Metrics   *metrics.Metrics
	// ulule store shared by the general and auth limiters.
	LimiterStore limiter.Store `optional:"true"`
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	cfg       config.Config
	log       *zap.Logger
	clock     clock.Clock
	started   time.Time
	store     *store.Store
	tokens    *auth.Tokens
	auth      *auth.Service
	subs      *subscription.Service
	policy    *authz.Policy
	activity  *activity.Recorder
	customers *service.Customers
	medicines *service.Medicines
	sales     *service.Sales
	credits   *service.Credits
	settings  *service.Settings
	dashboard *service.Dashboard
	export    *service.Export
	metrics   *metrics.Metrics

	generalLimit *ratelimit.Limiter
	authLimit    *ratelimit.Limiter
}

// New constructs a Handler.
func New(p Params) (*Handler, error) {
	h := &Handler{
		cfg:       p.Config,
		log:       p.Log.Named("http"),
		clock:     p.Clock,
		started:   p.Clock.Now(),
		store:     p.Store,
		tokens:    p.Tokens,
		auth:      p.Auth,
		subs:      p.Subs,
		policy:    p.Policy,
		activity:  p.Activity,
		customers: p.Customers,
		medicines: p.Medicines,
		sales:     p.Sales,
		credits:   p.Credits,
		settings:  p.Settings,
		dashboard: p.Dashboard,
		export:    p.Export,
		metrics:   p.Metrics,
	}
	if p.LimiterStore != nil {
		var err error
		if h.generalLimit, err = ratelimit.New(p.LimiterStore, "general", p.Config.RateLimitGeneral,
			h.limitReached("general", "Too many requests, please try again later"), h.limiterFailed); err != nil {
			return nil, err
		}
		if h.authLimit, err = ratelimit.New(p.LimiterStore, "auth", p.Config.RateLimitAuth,
			h.limitReached("auth", "Too many authentication attempts, please try again later"), h.limiterFailed); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(h.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", headerShopID, headerAccessToken, headerRequestID},
		ExposedHeaders: []string{"Content-Disposition", headerRequestID},
		MaxAge:         300,
	}))
	if h.generalLimit != nil {
		r.Use(h.generalLimit.Handler)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusNotFound, false, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusMethodNotAllowed, false, "method not allowed")
	})

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/status", func(r chi.Router) {
			r.Get("/health", h.health)
			r.Get("/ready", h.ready)
			r.Get("/live", h.live)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, h.resolveTenant)
				r.Get("/subscription", h.subscriptionStatus)
				r.With(h.authorize(authz.ObjectActivity, authz.ActionView)).Get("/activity", h.recentActivity)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			if h.authLimit != nil {
				r.Use(h.authLimit.Handler)
			}
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate)
				r.Post("/logout", h.logout)
				r.Get("/me", h.me)
			})
		})

		r.Route("/subscription", func(r chi.Router) {
			r.Get("/plans", h.plans)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, h.resolveTenant)
				r.With(h.authorize(authz.ObjectSubscription, authz.ActionView)).Get("/status", h.subscriptionStatus)
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectSubscription, authz.ActionManage))
					r.Post("/activate", h.activatePlan)
					r.Post("/start-trial", h.startTrial)
				})
			})
		})

		// Token and tenant, no subscription gate.
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.resolveTenant)

			r.Route("/export", func(r chi.Router) {
				r.Use(h.authorize(authz.ObjectExport, authz.ActionView))
				r.Get("/sales/csv", h.exportSalesCSV)
				r.Get("/sales/xlsx", h.exportSalesXLSX)
				r.Get("/full-backup", h.fullBackup)
			})

			r.Route("/admin/shops", func(r chi.Router) {
				r.Use(h.authorize(authz.ObjectShop, authz.ActionManage))
				r.Get("/", h.listShops)
				r.Post("/{id}/suspend", h.suspendShop)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, h.resolveTenant, h.requireSubscription)

			r.Route("/users", func(r chi.Router) {
				r.With(h.authorize(authz.ObjectUser, authz.ActionView)).Get("/", h.listUsers)
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectUser, authz.ActionManage))
					r.Post("/", h.createUser)
					r.Put("/{id}/status", h.setUserActive)
				})
			})

			r.Route("/customers", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectCustomer, authz.ActionView))
					r.Get("/", h.searchCustomers)
					r.Get("/credit", h.creditCustomers)
					r.Get("/{id}", h.customerProfile)
					r.Get("/{id}/sales", h.customerSales)
				})
				r.With(h.authorize(authz.ObjectCustomer, authz.ActionCreate)).Post("/", h.createCustomer)
				r.With(h.authorize(authz.ObjectCustomer, authz.ActionUpdate)).Put("/{id}", h.updateCustomer)
			})

			r.Route("/medicines", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectMedicine, authz.ActionView))
					r.Get("/", h.searchMedicines)
					r.Get("/expiry-alert", h.expiryAlerts)
				})
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectMedicine, authz.ActionCreate))
					r.Post("/", h.upsertMedicine)
					r.Post("/import", h.importMedicines)
				})
				r.Group(func(r chi.Router) {
					r.Use(h.authorize(authz.ObjectMedicine, authz.ActionUpdate))
					r.Put("/update-stock/{id}", h.addStock)
					r.Put("/{id}/stock", h.addStock)
					r.Put("/{id}", h.updateMedicine)
				})
			})

			r.Route("/sales", func(r chi.Router) {
				r.With(h.authorize(authz.ObjectSale, authz.ActionView)).Get("/", h.listSales)
				r.With(h.authorize(authz.ObjectSale, authz.ActionView)).Get("/{id}", h.getSale)
				r.With(h.authorize(authz.ObjectSale, authz.ActionCreate)).Post("/", h.createSale)
			})

			r.Route("/credits", func(r chi.Router) {
				r.With(h.authorize(authz.ObjectCredit, authz.ActionView)).Get("/", h.listCredits)
				r.With(h.authorize(authz.ObjectCredit, authz.ActionUpdate)).Put("/{id}/payment", h.recordPayment)
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(h.authorize(authz.ObjectSettings, authz.ActionView)).Get("/", h.getSettings)
				r.With(h.authorize(authz.ObjectSettings, authz.ActionUpdate)).Put("/", h.updateSettings)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(h.authorize(authz.ObjectDashboard, authz.ActionView))
				r.Get("/cards", h.dashboardCards)
				r.Get("/monthly-revenue", h.monthlyRevenue)
				r.Get("/top-medicines", h.topMedicines)
				r.Get("/stats", h.dashboardStats)
			})
		})
	})

	return r
}
