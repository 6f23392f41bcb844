// Package metrics exposes bridge counters over Prometheus. The bridge
// daemon serves them on a dedicated listen address when enabled.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SyncCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_sync_cycles_total",
		Help: "Completed sync cycles.",
	})
	AccountsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_accounts_synced_total",
		Help: "Successful per-account syncs.",
	})
	AccountFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_account_failures_total",
		Help: "Failed per-account syncs.",
	})
	DealsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_deals_fetched_total",
		Help: "History deals fetched from the terminal.",
	})
	CandlesUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_candles_upserted_total",
		Help: "Market data candles written to the store.",
	})
	CycleDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_last_cycle_duration_seconds",
		Help: "Wall time of the most recent sync cycle.",
	})
)

// Serve runs the /metrics endpoint until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
