package syncobs

import (
	"context"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/trace"
	"mt5-bridge/internal/types"
)

type observableSyncer struct {
	syncer interfaces.Syncer
}

var _ interfaces.Syncer = (*observableSyncer)(nil)

func Wrap(s interfaces.Syncer) interfaces.Syncer {
	return &observableSyncer{
		syncer: s,
	}
}

func (os *observableSyncer) SyncAccount(ctx context.Context, p types.Participant) (*types.SyncResult, error) {
	ctx, span := trace.StartSpan(ctx, "syncer.SyncAccount")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting account sync",
		"nickname", p.Nickname,
		"account_id", p.AccountID,
	)

	result, err := os.syncer.SyncAccount(ctx, p)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Account sync failed", err,
			"nickname", p.Nickname,
			"account_id", p.AccountID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.Sync(ctx, result.Nickname, result.AccountID, result.DealCount, result.ClosedTrades,
		"win_rate", result.Record.WinRate,
		"profit", result.Record.TotalProfit,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
