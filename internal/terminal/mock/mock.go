// Package mock is an in-memory terminal for DRY_RUN mode. Deal history
// is generated pseudo-randomly but seeded from the account id, so
// repeated syncs of one account see a stable history.
package mock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/types"
)

type Terminal struct {
	mu      sync.Mutex
	account int64
	orders  []types.OrderReq
}

var _ interfaces.Terminal = (*Terminal)(nil)

func New() *Terminal {
	return &Terminal{}
}

func (m *Terminal) Login(ctx context.Context, account int64, password, server string) error {
	if account == 0 {
		return fmt.Errorf("mock login requires an account id")
	}
	m.mu.Lock()
	m.account = account
	m.mu.Unlock()
	return nil
}

func (m *Terminal) AccountInfo(ctx context.Context) (types.AccountSnapshot, error) {
	m.mu.Lock()
	account := m.account
	m.mu.Unlock()

	rng := rand.New(rand.NewSource(account))
	balance := 10000 + rng.Float64()*5000
	return types.AccountSnapshot{
		Login:   account,
		Balance: balance,
		Equity:  balance * (0.98 + rng.Float64()*0.04),
	}, nil
}

func (m *Terminal) HistoryDeals(ctx context.Context, from, to time.Time) ([]types.Deal, error) {
	m.mu.Lock()
	account := m.account
	m.mu.Unlock()

	rng := rand.New(rand.NewSource(account))
	n := 5 + rng.Intn(20)

	deals := make([]types.Deal, 0, n*2)
	t := to.Add(-time.Duration(n+1) * time.Hour).Unix()
	if fromUnix := from.Unix(); t < fromUnix {
		t = fromUnix
	}

	price := 2400 + rng.Float64()*50
	for i := 0; i < n; i++ {
		id := account*1000 + int64(i)
		side := types.SideBuy
		if rng.Intn(2) == 1 {
			side = types.SideSell
		}
		move := (rng.Float64() - 0.45) * 5 // slight winning bias
		closePrice := price + move
		profit := move * 100
		if side == types.SideSell {
			profit = -profit
		}

		open := t + int64(i)*3600
		deals = append(deals,
			types.Deal{PositionID: id, Entry: types.EntryIn, Side: side, Time: open, Symbol: "XAUUSD", Volume: 0.01, Price: price},
			types.Deal{PositionID: id, Entry: types.EntryOut, Time: open + int64(5+rng.Intn(50))*60, Symbol: "XAUUSD", Price: closePrice, Profit: profit},
		)
		price = closePrice
	}

	// One still-open position, to exercise the open-trade path.
	deals = append(deals, types.Deal{
		PositionID: account*1000 + int64(n),
		Entry:      types.EntryIn,
		Side:       types.SideBuy,
		Time:       to.Add(-10 * time.Minute).Unix(),
		Symbol:     "XAUUSD",
		Volume:     0.01,
		Price:      price,
	})

	return deals, nil
}

func (m *Terminal) OpenPositions(ctx context.Context) ([]types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.orders) == 0 {
		return nil, nil
	}
	positions := make([]types.Position, 0, len(m.orders))
	for i, o := range m.orders {
		positions = append(positions, types.Position{
			ID:        m.account*100 + int64(i),
			Symbol:    o.Symbol,
			Side:      o.Side,
			Volume:    o.Volume,
			OpenTime:  time.Now().Unix(),
			OpenPrice: 2400,
		})
	}
	return positions, nil
}

func (m *Terminal) SymbolExists(ctx context.Context, symbol string) (bool, error) {
	switch symbol {
	case "XAUUSD", "EURUSD", "GBPUSD":
		return true, nil
	}
	return false, nil
}

func (m *Terminal) PointSize(ctx context.Context, symbol string) (float64, error) {
	switch symbol {
	case "XAUUSD":
		return 0.01, nil
	case "EURUSD", "GBPUSD":
		return 0.00001, nil
	}
	return 0, fmt.Errorf("symbol %s not found", symbol)
}

func (m *Terminal) Rates(ctx context.Context, symbol, timeframe string, count int) ([]types.Candle, error) {
	step := int64(15 * 60)
	now := time.Now().Unix()
	now -= now % step

	rng := rand.New(rand.NewSource(now / step))
	price := 2400 + rng.Float64()*20

	candles := make([]types.Candle, 0, count)
	for i := count; i > 0; i-- {
		move := (rng.Float64() - 0.5) * 3
		c := price + move
		candles = append(candles, types.Candle{
			Symbol: symbol,
			Ts:     now - int64(i)*step,
			Open:   price,
			High:   maxF(price, c) + rng.Float64(),
			Low:    minF(price, c) - rng.Float64(),
			Close:  c,
			Vol:    int64(rng.Intn(5000)),
		})
		price = c
	}
	return candles, nil
}

func (m *Terminal) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	m.mu.Lock()
	m.orders = append(m.orders, req)
	n := len(m.orders)
	m.mu.Unlock()

	return types.OrderResp{
		OrderID: fmt.Sprintf("mock-%d", n),
		Status:  "done",
		Price:   2400,
	}, nil
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
