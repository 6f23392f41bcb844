package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mt5-bridge/internal/db"
	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/notify"
	"mt5-bridge/internal/store"
	"mt5-bridge/internal/syncer"
	"mt5-bridge/internal/syncer/syncobs"
	"mt5-bridge/internal/synclog"
	"mt5-bridge/internal/terminal/mock"
	"mt5-bridge/internal/terminal/mt5"
	"mt5-bridge/internal/terminal/terminalobs"
	"mt5-bridge/internal/trace"

	"github.com/joho/godotenv"
)

const configPath = "config.yaml"

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldJournals gzips sync journals past the retention window
func compressOldJournals(ctx context.Context, cfg *store.Config) {
	if cfg.LogRetentionDays <= 0 {
		return
	}
	if err := synclog.CompressOlder(cfg.LogRetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old journals", "error", err)
	}
}

// initializeStore opens the database and runs migrations
func initializeStore(ctx context.Context, cfg *store.Config) (*db.DB, error) {
	d, err := db.Open(db.Params{
		Type:            cfg.Database.Type,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMin) * time.Minute,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open database", err, "type", cfg.Database.Type)
		return nil, err
	}

	if err := d.Migrate(); err != nil {
		logger.ErrorWithErr(ctx, "Failed to migrate database", err)
		return nil, err
	}

	logger.Info(ctx, "Database ready", "type", cfg.Database.Type)
	return d, nil
}

// initializeTerminal builds the terminal client with observability
func initializeTerminal(ctx context.Context, cfg *store.Config) interfaces.Terminal {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - using mock terminal data")
		return terminalobs.Wrap(mock.New())
	}

	logger.Info(ctx, "Using live MT5 gateway", "url", cfg.Gateway.URL)
	client := mt5.New(mt5.Params{
		BaseURL:   cfg.Gateway.URL,
		Timeout:   time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		UTCOffset: cfg.UTCOffsetSeconds,
	})
	return terminalobs.Wrap(client)
}

// initializeNotifier builds the alert sink
func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	if !cfg.Telegram.Enabled {
		return notify.Noop{}
	}

	tg := notify.NewTelegram()
	if !tg.Enabled() {
		logger.Warn(ctx, "Telegram enabled in config but TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID unset")
	}
	return tg
}

// initializeSyncer builds the sync engine with observability
func initializeSyncer(cfg *store.Config, term interfaces.Terminal, st interfaces.Store) interfaces.Syncer {
	eng := syncer.New(term, st, cfg.HistoryFromTime())
	return syncobs.Wrap(eng)
}

// startConfigWatcher enables hot reload of the config file. A watcher
// failure is logged, not fatal: the daemon keeps its startup config.
func startConfigWatcher(ctx context.Context) *store.Watcher {
	w, err := store.NewWatcher(configPath)
	if err != nil {
		logger.Warn(ctx, "Config hot reload unavailable", "error", err)
		return nil
	}
	if err := w.Start(ctx); err != nil {
		logger.Warn(ctx, "Config hot reload unavailable", "error", err)
		return nil
	}
	return w
}
