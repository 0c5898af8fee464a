package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ulule/limiter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/api"
	"pharmatrack/m/internal/auth"
	"pharmatrack/m/internal/authz"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/config"
	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/logger"
	"pharmatrack/m/internal/metrics"
	"pharmatrack/m/internal/migrations"
	"pharmatrack/m/internal/ratelimit"
	"pharmatrack/m/internal/service"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/subscription"
)

func main() {
	fx.New(
		fx.Provide(config.Load),
		logger.Module,
		fx.WithLogger(logger.FxEventLogger),

		fx.Provide(
			newDatabase,
			store.New,
			func() clock.Clock { return clock.System{} },
			newTokens,
			newSubscriptions,
			activity.NewRecorder,
			auth.NewService,
			authz.NewPolicy,
			metrics.New,
			newLimiterStore,

			service.NewCustomers,
			service.NewMedicines,
			service.NewSales,
			service.NewCredits,
			service.NewSettings,
			service.NewDashboard,
			service.NewExport,

			api.New,
		),

		fx.Invoke(bootstrap),
		fx.Invoke(runHTTP),
	).Run()
}

func newDatabase(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}

func newTokens(cfg config.Config, clk clock.Clock) *auth.Tokens {
	return auth.NewTokens(cfg.Secret, cfg.TokenTTL, clk)
}

func newSubscriptions(st *store.Store, clk clock.Clock, cfg config.Config, rec *activity.Recorder, log *zap.Logger) *subscription.Service {
	return subscription.NewService(st, clk, cfg.TrialDays, rec, log)
}

func newLimiterStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (limiter.Store, error) {
	st, err := ratelimit.NewStore(context.Background(), ratelimit.StoreConfig{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return st.Close()
		},
	})
	return st, nil
}

func runHTTP(lc fx.Lifecycle, cfg config.Config, h *api.Handler, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("PharmaTrack server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
