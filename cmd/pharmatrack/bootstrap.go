package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"pharmatrack/m/internal/auth"
	"pharmatrack/m/internal/config"
	"pharmatrack/m/internal/service"
)

// bootstrap creates the configured superadmin and loads the seed catalog
// into SEED_SHOP_ID. Both steps are skipped when not configured.
func bootstrap(cfg config.Config, authSvc *auth.Service, medicines *service.Medicines, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.SuperAdminUsername != "" {
		created, err := authSvc.EnsureSuperAdmin(ctx, cfg.SuperAdminUsername, cfg.SuperAdminPassword)
		if err != nil {
			return fmt.Errorf("ensure superadmin: %w", err)
		}
		if created {
			log.Info("superadmin created", zap.String("username", cfg.SuperAdminUsername))
		}
	}

	if cfg.SeedMedicinesCSV == "" {
		return nil
	}
	if cfg.SeedShopID <= 0 {
		log.Warn("SEED_MEDICINES_CSV set without SEED_SHOP_ID, skipping seed")
		return nil
	}
	f, err := os.Open(cfg.SeedMedicinesCSV)
	if err != nil {
		log.Warn("seed file not found, skipping", zap.String("path", cfg.SeedMedicinesCSV), zap.Error(err))
		return nil
	}
	defer f.Close()

	result, err := medicines.Import(ctx, cfg.SeedShopID, f)
	if err != nil {
		return fmt.Errorf("seed medicines: %w", err)
	}
	log.Info("medicines seeded",
		zap.Int64("shop_id", cfg.SeedShopID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.Skipped)))
	return nil
}
