package interfaces

import (
	"context"
	"time"

	"mt5-bridge/internal/types"
)

type Terminal interface {
	Login(ctx context.Context, account int64, password, server string) error
	AccountInfo(ctx context.Context) (types.AccountSnapshot, error)
	HistoryDeals(ctx context.Context, from, to time.Time) ([]types.Deal, error)
	OpenPositions(ctx context.Context) ([]types.Position, error)
	PointSize(ctx context.Context, symbol string) (float64, error)
	Rates(ctx context.Context, symbol, timeframe string, count int) ([]types.Candle, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
