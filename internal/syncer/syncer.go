// Package syncer runs the per-account sync step: authenticate to the
// terminal, pull the deal history window, run the analytics engine, and
// hand the results to the persistence sink.
package syncer

import (
	"context"
	"fmt"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/stats"
	"mt5-bridge/internal/types"
)

type Engine struct {
	terminal    interfaces.Terminal
	store       interfaces.Store
	historyFrom time.Time
	now         func() time.Time
}

var _ interfaces.Syncer = (*Engine)(nil)

func New(terminal interfaces.Terminal, store interfaces.Store, historyFrom time.Time) *Engine {
	return &Engine{
		terminal:    terminal,
		store:       store,
		historyFrom: historyFrom,
		now:         time.Now,
	}
}

// SyncAccount processes one participant end to end. Each account gets a
// fresh analytics run with its own point-size cache, so accounts can be
// synced concurrently if the caller chooses to.
func (e *Engine) SyncAccount(ctx context.Context, p types.Participant) (*types.SyncResult, error) {
	if !p.HasCredentials() {
		return nil, fmt.Errorf("participant %s (#%d): incomplete credentials", p.Nickname, p.AccountID)
	}

	if err := e.terminal.Login(ctx, p.AccountID, p.InvestorPassword, p.Server); err != nil {
		return nil, fmt.Errorf("login %s (#%d): %w", p.Nickname, p.AccountID, err)
	}

	snap, err := e.terminal.AccountInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("account info %s (#%d): %w", p.Nickname, p.AccountID, err)
	}

	now := e.now().UTC()
	deals, err := e.terminal.HistoryDeals(ctx, e.historyFrom, now)
	if err != nil {
		return nil, fmt.Errorf("history deals %s (#%d): %w", p.Nickname, p.AccountID, err)
	}

	res, err := stats.Compute(stats.Input{
		Deals:   deals,
		Balance: snap.Balance,
		Equity:  snap.Equity,
		Now:     now,
		Points: stats.PointFunc(func(symbol string) (float64, error) {
			return e.terminal.PointSize(ctx, symbol)
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("compute statistics %s (#%d): %w", p.Nickname, p.AccountID, err)
	}

	if err := e.store.UpsertDailyStats(ctx, p.ID, res.Record); err != nil {
		return nil, err
	}
	logger.Upsert(ctx, "daily_stats", 1, "participant", p.Nickname)

	if err := e.store.UpsertTrades(ctx, p.ID, res.Closed); err != nil {
		return nil, err
	}
	logger.Upsert(ctx, "trades", len(res.Closed), "participant", p.Nickname)

	return &types.SyncResult{
		Nickname:     p.Nickname,
		AccountID:    p.AccountID,
		DealCount:    len(deals),
		ClosedTrades: len(res.Closed),
		Record:       res.Record,
	}, nil
}
