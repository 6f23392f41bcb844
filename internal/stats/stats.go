// Package stats turns a raw, unordered stream of execution deals into
// reconstructed positions and aggregate trading-performance metrics.
//
// The package is pure computation: it performs no I/O, keeps no state
// between calls, and is safe to run concurrently for different accounts.
// Tick-size lookups go through the caller-supplied PointSource; results
// are cached only for the duration of a single Compute call.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"mt5-bridge/internal/types"
)

// ErrMissingPositionID is returned when a deal carries no position
// identifier. This is the only structurally malformed input the engine
// refuses to process; everything else degrades to defined defaults.
var ErrMissingPositionID = errors.New("deal has no position id")

// PointSource resolves an instrument's tick size ("point value").
// Implementations may hit the terminal; Compute calls it at most once
// per distinct symbol per run.
type PointSource interface {
	Point(symbol string) (float64, error)
}

// PointFunc adapts a plain function to PointSource.
type PointFunc func(symbol string) (float64, error)

func (f PointFunc) Point(symbol string) (float64, error) { return f(symbol) }

// Input is everything one analytics run consumes. Deals may arrive in
// any order. Balance and Equity come from the live account snapshot and
// are passed through to the output record; Balance also anchors the
// drawdown percentage. Points may be nil, in which case total_points is 0.
type Input struct {
	Deals   []types.Deal
	Balance float64
	Equity  float64
	Now     time.Time
	Points  PointSource
}

// Result is one StatisticsRecord plus the reconstructed positions.
// Closed holds only completed round-trips, sorted by close time; ByID is
// the full reconstruction map, kept for visibility into positions whose
// opening or closing leg fell outside the history window.
type Result struct {
	Record types.StatisticsRecord
	Closed []*types.Position
	ByID   map[int64]*types.Position
}

// Compute runs the full analytics pipeline over one account's deals.
//
// The drawdown percentage reconstructs a starting balance as
// current balance minus total observed profit, which is exact only when
// the deal history covers the account's whole trading lifetime. A
// truncated window under-states true drawdown; callers that sync partial
// windows should treat max_drawdown_pct as a lower bound.
func Compute(in Input) (*Result, error) {
	byID, err := reconstruct(in.Deals)
	if err != nil {
		return nil, err
	}

	closed := make([]*types.Position, 0, len(byID))
	open := 0
	for _, p := range byID {
		if p.Closed() {
			closed = append(closed, p)
		} else {
			open++
		}
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i].CloseTime < closed[j].CloseTime })

	rec := types.StatisticsRecord{
		Date:         in.Now.Format("2006-01-02"),
		Balance:      in.Balance,
		Equity:       in.Equity,
		OpenTrades:   open,
		FavoritePair: favoritePair(in.Deals),
	}

	aggregate(&rec, closed)
	rec.MaxDrawdownPct = maxDrawdownPct(closed, in.Balance)
	analyzeStreaks(&rec, closed)
	analyzeHolding(&rec, closed)
	rec.TotalPoints = totalPoints(closed, in.Points)

	return &Result{Record: rec, Closed: closed, ByID: byID}, nil
}

// reconstruct groups deals by position id and fills in whichever legs
// have been observed. IN and OUT legs may arrive in either order; a
// position missing one leg stays partially filled and is skipped by the
// closed-trade statistics.
func reconstruct(deals []types.Deal) (map[int64]*types.Position, error) {
	byID := make(map[int64]*types.Position, len(deals))
	for i, d := range deals {
		if d.PositionID == 0 {
			return nil, fmt.Errorf("deal %d (%s): %w", i, d.Symbol, ErrMissingPositionID)
		}
		p := byID[d.PositionID]
		if p == nil {
			p = &types.Position{ID: d.PositionID, Symbol: d.Symbol}
			byID[d.PositionID] = p
		}
		switch d.Entry {
		case types.EntryIn:
			p.OpenTime = d.Time
			p.OpenPrice = d.Price
			p.Volume = d.Volume
			p.Side = d.Side
		case types.EntryOut:
			p.CloseTime = d.Time
			p.ClosePrice = d.Price
			// Partial closes: every OUT leg adds its share of profit.
			p.Profit += d.Profit
		}
	}
	return byID, nil
}

// favoritePair is the most frequently traded symbol across all deals,
// ties broken by first encounter. "-" when there are no deals.
func favoritePair(deals []types.Deal) string {
	if len(deals) == 0 {
		return "-"
	}
	counts := make(map[string]int, 8)
	order := make([]string, 0, 8)
	for _, d := range deals {
		if counts[d.Symbol] == 0 {
			order = append(order, d.Symbol)
		}
		counts[d.Symbol]++
	}
	best := order[0]
	for _, sym := range order[1:] {
		if counts[sym] > counts[best] {
			best = sym
		}
	}
	return best
}
