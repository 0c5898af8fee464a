package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application configuration values.
type Config struct {
	Env         string
	HTTPPort    string
	Secret      string
	TokenTTL    time.Duration
	TrialDays   int
	DBDriver    string
	DatabaseDSN string
	LogLevel    string

	CORSAllowedOrigins []string
	RateLimitGeneral   string
	RateLimitAuth      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SuperAdminUsername string
	SuperAdminPassword string
	SeedMedicinesCSV   string
	SeedShopID         int64
}

// Load reads configuration from the environment (and a .env file when
// present) with reasonable defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("TRIAL_DAYS", 30)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_GENERAL", "100-M")
	v.SetDefault("RATE_LIMIT_AUTH", "10-M")
	v.SetDefault("REDIS_DB", 0)

	cfg := Config{
		Env:                strings.ToLower(v.GetString("APP_ENV")),
		HTTPPort:           v.GetString("HTTP_PORT"),
		Secret:             v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		TrialDays:          v.GetInt("TRIAL_DAYS"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimitGeneral:   v.GetString("RATE_LIMIT_GENERAL"),
		RateLimitAuth:      v.GetString("RATE_LIMIT_AUTH"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		SuperAdminUsername: v.GetString("SUPERADMIN_USERNAME"),
		SuperAdminPassword: v.GetString("SUPERADMIN_PASSWORD"),
		SeedMedicinesCSV:   v.GetString("SEED_MEDICINES_CSV"),
		SeedShopID:         v.GetInt64("SEED_SHOP_ID"),
	}

	if cfg.Secret == "" && cfg.Env != EnvProduction {
		cfg.Secret = "dev_secret"
	}
	if cfg.DatabaseDSN == "" {
		switch cfg.DBDriver {
		case "postgres":
			cfg.DatabaseDSN = "postgres://postgres@localhost:5432/pharmatrack?sslmode=disable"
		default:
			cfg.DatabaseDSN = "file:pharmatrack.db?_time_format=sqlite"
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("invalid HTTP_PORT value %q", c.HTTPPort)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.Secret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.TrialDays <= 0 {
		return errors.New("TRIAL_DAYS must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
