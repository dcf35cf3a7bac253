package cli

import (
	"context"
	"fmt"

	"school-service/internal/store"
	"school-service/pkg/config"
	"school-service/pkg/database"
	"school-service/pkg/logger"
	"school-service/prometheus"

	"go.uber.org/zap"
)

// app is the wiring shared by every command
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

// loadApp reads configuration, sets up logging and metrics and opens the database
func loadApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	if err := prometheus.InitMetrics(cfg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	return &app{cfg: cfg, log: log, store: store.New(db, log)}, nil
}

func (a *app) close() {
	if sqlDB, err := a.store.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func (a *app) migrate(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	a.log.Info("Database migrated")
	return nil
}
