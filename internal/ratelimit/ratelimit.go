// Package ratelimit throttles requests per client IP. Counters live in
// memory, or in redis when several instances must share them.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const keyPrefix = "pharmatrack:ratelimit"

type StoreConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Store is a limiter store with the resources backing it.
type Store struct {
	limiter.Store
	client *redis.Client
}

// Close releases the redis connection, if any.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// NewStore returns a redis-backed store when an address is configured and
// an in-memory one otherwise.
func NewStore(ctx context.Context, cfg StoreConfig, log *zap.Logger) (*Store, error) {
	if cfg.RedisAddr == "" {
		log.Info("rate limiter using in-memory store")
		return &Store{Store: memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: 30 * time.Second,
		})}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis limiter store: %w", err)
	}
	log.Info("rate limiter using redis store", zap.String("addr", cfg.RedisAddr))
	return &Store{Store: store, client: client}, nil
}

// Limiter is one named rate, such as "100-M", applied per client IP.
type Limiter struct {
	name       string
	middleware *stdlib.Middleware
}

// New builds a limiter. reached answers requests over the rate and failed
// answers requests the store could not count.
func New(store limiter.Store, name, rate string, reached http.HandlerFunc, failed func(http.ResponseWriter, *http.Request, error)) (*Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", name, err)
	}
	instance := limiter.New(store, parsed)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return name + ":" + instance.GetIPKey(r)
		}),
		stdlib.WithLimitReachedHandler(stdlib.LimitReachedHandler(reached)),
		stdlib.WithErrorHandler(failed),
	)
	return &Limiter{name: name, middleware: mw}, nil
}

func (l *Limiter) Name() string { return l.name }

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return l.middleware.Handler(next)
}
