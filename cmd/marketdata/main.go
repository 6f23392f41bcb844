// marketdata periodically pulls recent candles for one instrument from
// the terminal and upserts them into the market_data table. Candle
// times are normalized to UTC and stored under the canonical symbol
// name regardless of which broker variant actually resolved.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt5-bridge/internal/db"
	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/metrics"
	"mt5-bridge/internal/store"
	"mt5-bridge/internal/terminal"
	"mt5-bridge/internal/terminal/mock"
	"mt5-bridge/internal/terminal/mt5"
	"mt5-bridge/internal/trace"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		return err
	}

	d, err := db.Open(db.Params{
		Type:            cfg.Database.Type,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMin) * time.Minute,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Migrate(); err != nil {
		return err
	}

	term, checker := buildTerminal(cfg)
	resolver := terminal.NewResolver(checker)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.ErrorWithErr(ctx, "Metrics endpoint failed", err, "addr", cfg.Metrics.Addr)
			}
		}()
		logger.Info(ctx, "Metrics endpoint enabled", "addr", cfg.Metrics.Addr)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(cfg.MarketData.SyncSeconds) * time.Second
	tick := time.NewTicker(interval)
	defer tick.Stop()

	logger.Info(ctx, "Market data service started",
		"symbol", cfg.MarketData.Symbol,
		"timeframe", cfg.MarketData.Timeframe,
		"sync_seconds", cfg.MarketData.SyncSeconds,
	)

	syncOnce(ctx, cfg, term, resolver, d)
	for {
		select {
		case <-tick.C:
			syncOnce(ctx, cfg, term, resolver, d)
		case <-sigc:
			logger.Info(ctx, "Market data service stopping")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func buildTerminal(cfg *store.Config) (interfaces.Terminal, terminal.SymbolChecker) {
	if cfg.Mode == "DRY_RUN" {
		m := mock.New()
		return m, m
	}
	c := mt5.New(mt5.Params{
		BaseURL:   cfg.Gateway.URL,
		Timeout:   time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		UTCOffset: cfg.UTCOffsetSeconds,
	})
	return c, c
}

func syncOnce(ctx context.Context, cfg *store.Config, term interfaces.Terminal, resolver *terminal.Resolver, st interfaces.Store) {
	symbol, err := resolver.Resolve(ctx, cfg.MarketData.Variants)
	if err != nil {
		logger.ErrorWithErr(ctx, "No broker symbol resolves", err, "candidates", cfg.MarketData.Variants)
		return
	}

	candles, err := term.Rates(ctx, symbol, cfg.MarketData.Timeframe, cfg.MarketData.Candles)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch rates", err, "symbol", symbol)
		return
	}

	// Store under the canonical name so downstream queries never see
	// broker-specific suffixes.
	for i := range candles {
		candles[i].Symbol = cfg.MarketData.Symbol
	}

	if err := st.UpsertCandles(ctx, candles); err != nil {
		logger.ErrorWithErr(ctx, "Failed to upsert candles", err, "count", len(candles))
		return
	}

	metrics.CandlesUpserted.Add(float64(len(candles)))
	logger.Upsert(ctx, "market_data", len(candles), "symbol", cfg.MarketData.Symbol, "resolved_as", symbol)
}
