package terminalobs

import (
	"context"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/logger"
	"mt5-bridge/internal/trace"
	"mt5-bridge/internal/types"
)

// observableTerminal wraps a Terminal with logging and tracing
type observableTerminal struct {
	terminal interfaces.Terminal
}

// Compile-time interface check
var _ interfaces.Terminal = (*observableTerminal)(nil)

// Wrap wraps a terminal with observability middleware
func Wrap(t interfaces.Terminal) interfaces.Terminal {
	return &observableTerminal{
		terminal: t,
	}
}

func (ot *observableTerminal) Login(ctx context.Context, account int64, password, server string) error {
	ctx, span := trace.StartSpan(ctx, "terminal.Login")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Logging in to terminal", "account", account, "server", server)

	err := ot.terminal.Login(ctx, account, password, server)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Terminal login failed", err, "account", account, "server", server)
		return err
	}

	logger.DebugSkip(ctx, 1, "Terminal login succeeded", "account", account)
	return nil
}

func (ot *observableTerminal) AccountInfo(ctx context.Context) (types.AccountSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.AccountInfo")
	defer span.End()

	snap, err := ot.terminal.AccountInfo(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account info", err)
		return types.AccountSnapshot{}, err
	}

	logger.DebugSkip(ctx, 1, "Account info fetched", "login", snap.Login, "balance", snap.Balance)
	return snap, nil
}

func (ot *observableTerminal) HistoryDeals(ctx context.Context, from, to time.Time) ([]types.Deal, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.HistoryDeals")
	defer span.End()

	deals, err := ot.terminal.HistoryDeals(ctx, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch history deals", err,
			"from", from.Format(time.RFC3339),
			"to", to.Format(time.RFC3339),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "History deals fetched", "count", len(deals))
	return deals, nil
}

func (ot *observableTerminal) OpenPositions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.OpenPositions")
	defer span.End()

	positions, err := ot.terminal.OpenPositions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch open positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Open positions fetched", "count", len(positions))
	return positions, nil
}

func (ot *observableTerminal) PointSize(ctx context.Context, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.PointSize")
	defer span.End()

	point, err := ot.terminal.PointSize(ctx, symbol)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Point size unavailable", "symbol", symbol, "error", err)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Point size fetched", "symbol", symbol, "point", point)
	return point, nil
}

func (ot *observableTerminal) Rates(ctx context.Context, symbol, timeframe string, count int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.Rates")
	defer span.End()

	candles, err := ot.terminal.Rates(ctx, symbol, timeframe, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch rates", err, "symbol", symbol, "timeframe", timeframe)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Rates fetched", "symbol", symbol, "count", len(candles))
	return candles, nil
}

func (ot *observableTerminal) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side.String(),
		"volume", req.Volume,
		"tag", req.Tag,
	)

	resp, err := ot.terminal.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"side", req.Side.String(),
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"symbol", req.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
