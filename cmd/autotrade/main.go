// autotrade keeps demo accounts active by opening one random BUY or
// SELL on each account that has no open position, with TP/SL a fixed
// number of points from the entry price. Intended for mock-data runs
// against demo accounts only; participants come from a CSV file so the
// tool works without database access.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt5-bridge/internal/db"
	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/store"
	"mt5-bridge/internal/terminal"
	"mt5-bridge/internal/terminal/mock"
	"mt5-bridge/internal/terminal/mt5"
	"mt5-bridge/internal/terminal/terminalobs"
	"mt5-bridge/internal/types"

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		return err
	}

	term, checker := buildTerminal(cfg)
	resolver := terminal.NewResolver(checker)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.AutoTrade.CheckSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Auto trade started",
		"symbol", cfg.AutoTrade.Symbol,
		"tp_sl_points", cfg.AutoTrade.TPSLPoints,
		"mode", cfg.Mode,
	)

	scan(ctx, cfg, term, resolver)
	for {
		select {
		case <-tick.C:
			scan(ctx, cfg, term, resolver)
		case <-sigc:
			logger.Info(ctx, "Auto trade stopping")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func buildTerminal(cfg *store.Config) (interfaces.Terminal, terminal.SymbolChecker) {
	if cfg.Mode == "DRY_RUN" {
		m := mock.New()
		return terminalobs.Wrap(m), m
	}
	c := mt5.New(mt5.Params{
		BaseURL:   cfg.Gateway.URL,
		Timeout:   time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		UTCOffset: cfg.UTCOffsetSeconds,
	})
	return terminalobs.Wrap(c), c
}

func scan(ctx context.Context, cfg *store.Config, term interfaces.Terminal, resolver *terminal.Resolver) {
	participants, err := db.ReadParticipantsCSV(cfg.AutoTrade.ParticipantsCSV)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to read participants", err, "path", cfg.AutoTrade.ParticipantsCSV)
		return
	}

	for _, p := range participants {
		if err := processAccount(ctx, cfg, term, resolver, p); err != nil {
			logger.ErrorWithErr(ctx, "Account scan failed", err, "nickname", p.Nickname)
		}
		// Short pause between accounts, as the terminal holds one
		// session at a time.
		time.Sleep(time.Second)
	}
}

func processAccount(ctx context.Context, cfg *store.Config, term interfaces.Terminal, resolver *terminal.Resolver, p types.Participant) error {
	if !p.HasCredentials() {
		logger.Warn(ctx, "Skipping participant with incomplete credentials", "nickname", p.Nickname)
		return nil
	}

	if err := term.Login(ctx, p.AccountID, p.InvestorPassword, p.Server); err != nil {
		return fmt.Errorf("login #%d: %w", p.AccountID, err)
	}

	positions, err := term.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("open positions #%d: %w", p.AccountID, err)
	}
	if len(positions) > 0 {
		logger.Debug(ctx, "Account has open positions, skipping", "nickname", p.Nickname, "count", len(positions))
		return nil
	}

	return openRandomTrade(ctx, cfg, term, resolver)
}

func openRandomTrade(ctx context.Context, cfg *store.Config, term interfaces.Terminal, resolver *terminal.Resolver) error {
	symbol, err := resolver.Resolve(ctx, cfg.AutoTrade.Variants)
	if err != nil {
		return err
	}

	point, err := term.PointSize(ctx, symbol)
	if err != nil {
		return fmt.Errorf("point size %s: %w", symbol, err)
	}

	// Approximate the entry price from the latest minute bar; good
	// enough for placing demo TP/SL brackets.
	bars, err := term.Rates(ctx, symbol, "M1", 1)
	if err != nil {
		return fmt.Errorf("latest price %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("latest price %s: no bars returned", symbol)
	}
	price := bars[len(bars)-1].Close

	side := types.SideBuy
	if rand.Intn(2) == 1 {
		side = types.SideSell
	}

	offset := cfg.AutoTrade.TPSLPoints * point
	req := types.OrderReq{
		Symbol: symbol,
		Side:   side,
		Volume: cfg.AutoTrade.Volume,
		Tag:    "autotrade",
	}
	if side == types.SideBuy {
		req.SL = price - offset
		req.TP = price + offset
	} else {
		req.SL = price + offset
		req.TP = price - offset
	}

	resp, err := term.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Opened trade",
		"symbol", symbol,
		"side", side.String(),
		"volume", cfg.AutoTrade.Volume,
		"sl", req.SL,
		"tp", req.TP,
		"order_id", resp.OrderID,
	)
	return nil
}
