package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/metrics"
	"mt5-bridge/internal/store"
	"mt5-bridge/internal/synclog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	compressOldJournals(ctx, cfg)

	db, err := initializeStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	term := initializeTerminal(ctx, cfg)
	notifier := initializeNotifier(ctx, cfg)
	sync := initializeSyncer(cfg, term, db)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.ErrorWithErr(ctx, "Metrics endpoint failed", err, "addr", cfg.Metrics.Addr)
			}
		}()
		logger.Info(ctx, "Metrics endpoint enabled", "addr", cfg.Metrics.Addr)
	}

	watcher := startConfigWatcher(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(cfg.SyncSeconds) * time.Second
	tick := time.NewTicker(interval)
	defer tick.Stop()

	logger.Info(ctx, "Bridge started", "sync_seconds", cfg.SyncSeconds, "mode", cfg.Mode)
	sendNotice(ctx, notifier, fmt.Sprintf("🚀 Bridge started (sync interval: %ds)", cfg.SyncSeconds))

	// First cycle immediately rather than waiting out a full interval.
	runCycle(ctx, cfg, db, sync, notifier)

	for {
		select {
		case <-tick.C:
			runCycle(ctx, cfg, db, sync, notifier)
		case updated := <-watcherUpdates(watcher):
			if updated.SyncSeconds != cfg.SyncSeconds {
				logger.Info(ctx, "Sync interval updated", "old", cfg.SyncSeconds, "new", updated.SyncSeconds)
				tick.Reset(time.Duration(updated.SyncSeconds) * time.Second)
			}
			cfg = updated
		case err := <-watcherErrors(watcher):
			logger.Warn(ctx, "Config reload failed", "error", err)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			sendNotice(ctx, notifier, "🛑 Bridge stopped")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// runCycle syncs every participant once. Per-account failures are
// journaled and counted but never abort the cycle.
func runCycle(ctx context.Context, cfg *store.Config, st interfaces.Store, sync interfaces.Syncer, notifier interfaces.Notifier) {
	start := time.Now()
	defer func() {
		metrics.SyncCycles.Inc()
		metrics.CycleDuration.Set(time.Since(start).Seconds())
	}()

	participants, err := st.Participants(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load participants", err)
		sendNotice(ctx, notifier, fmt.Sprintf("⚠️ Bridge error:\n%v", err))
		return
	}

	synced := 0
	for _, p := range participants {
		if !p.HasCredentials() {
			logger.Warn(ctx, "Skipping participant with incomplete credentials", "nickname", p.Nickname)
			continue
		}

		res, err := sync.SyncAccount(ctx, p)
		if err != nil {
			metrics.AccountFailures.Inc()
			_ = synclog.Failure(p, err)
			continue
		}

		metrics.AccountsSynced.Inc()
		metrics.DealsFetched.Add(float64(res.DealCount))
		_ = synclog.Record(res)
		synced++
	}

	logger.Info(ctx, "Sync cycle complete",
		"participants", len(participants),
		"synced", synced,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func sendNotice(ctx context.Context, n interfaces.Notifier, text string) {
	if err := n.Send(ctx, text); err != nil {
		logger.Warn(ctx, "Notification failed", "error", err)
	}
}

// watcherUpdates tolerates a nil watcher (hot reload disabled).
func watcherUpdates(w *store.Watcher) <-chan *store.Config {
	if w == nil {
		return nil
	}
	return w.Updates
}

func watcherErrors(w *store.Watcher) <-chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}
