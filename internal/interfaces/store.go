package interfaces

import (
	"context"

	"mt5-bridge/internal/types"
)

type Store interface {
	Participants(ctx context.Context) ([]types.Participant, error)
	UpsertDailyStats(ctx context.Context, participantID int64, rec types.StatisticsRecord) error
	UpsertTrades(ctx context.Context, participantID int64, positions []*types.Position) error
	UpsertCandles(ctx context.Context, candles []types.Candle) error
}
