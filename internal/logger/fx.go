package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"pharmatrack/m/internal/config"
)

// NewFromConfig creates the application logger from Config.
func NewFromConfig(cfg config.Config) (*zap.Logger, error) {
	return New(cfg.Env, cfg.LogLevel)
}

// FxEventLogger routes fx lifecycle events through zap.
func FxEventLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

func registerHooks(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}

var Module = fx.Module("logger",
	fx.Provide(NewFromConfig),
	fx.Invoke(registerHooks),
)
