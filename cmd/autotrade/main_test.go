package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"mt5-bridge/internal/store"
	"mt5-bridge/internal/terminal"
	"mt5-bridge/internal/types"
)

type quietTerminal struct {
	bars   []types.Candle
	placed []types.OrderReq
}

func (t *quietTerminal) Login(context.Context, int64, string, string) error { return nil }
func (t *quietTerminal) AccountInfo(context.Context) (types.AccountSnapshot, error) {
	return types.AccountSnapshot{}, nil
}
func (t *quietTerminal) HistoryDeals(context.Context, time.Time, time.Time) ([]types.Deal, error) {
	return nil, nil
}
func (t *quietTerminal) OpenPositions(context.Context) ([]types.Position, error) { return nil, nil }
func (t *quietTerminal) PointSize(context.Context, string) (float64, error)      { return 0.01, nil }
func (t *quietTerminal) Rates(context.Context, string, string, int) ([]types.Candle, error) {
	return t.bars, nil
}
func (t *quietTerminal) PlaceOrder(_ context.Context, req types.OrderReq) (types.OrderResp, error) {
	t.placed = append(t.placed, req)
	return types.OrderResp{Status: "done"}, nil
}
func (t *quietTerminal) SymbolExists(context.Context, string) (bool, error) { return true, nil }

func autotradeConfig() *store.Config {
	cfg := &store.Config{}
	cfg.AutoTrade.Variants = []string{"XAUUSD"}
	cfg.AutoTrade.Volume = 0.01
	cfg.AutoTrade.TPSLPoints = 500
	return cfg
}

func TestOpenRandomTradeNoBars(t *testing.T) {
	term := &quietTerminal{}
	cfg := autotradeConfig()

	err := openRandomTrade(context.Background(), cfg, term, terminal.NewResolver(term))
	if err == nil {
		t.Fatal("expected error when the terminal returns no bars")
	}
	if !strings.Contains(err.Error(), "no bars") {
		t.Errorf("error = %q, want a no-bars message", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("error = %q, wraps a nil error", err)
	}
	if len(term.placed) != 0 {
		t.Errorf("placed %d orders without a price", len(term.placed))
	}
}

func TestOpenRandomTradePlacesBracketedOrder(t *testing.T) {
	term := &quietTerminal{bars: []types.Candle{{Symbol: "XAUUSD", Close: 2400}}}
	cfg := autotradeConfig()

	if err := openRandomTrade(context.Background(), cfg, term, terminal.NewResolver(term)); err != nil {
		t.Fatalf("openRandomTrade: %v", err)
	}
	if len(term.placed) != 1 {
		t.Fatalf("placed %d orders, want 1", len(term.placed))
	}

	req := term.placed[0]
	want := 500 * 0.01
	switch req.Side {
	case types.SideBuy:
		if req.TP != 2400+want || req.SL != 2400-want {
			t.Errorf("buy brackets TP=%v SL=%v", req.TP, req.SL)
		}
	case types.SideSell:
		if req.TP != 2400-want || req.SL != 2400+want {
			t.Errorf("sell brackets TP=%v SL=%v", req.TP, req.SL)
		}
	}
}
