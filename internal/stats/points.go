package stats

import (
	"math"

	"mt5-bridge/internal/types"
)

// totalPoints sums each closed position's price delta in broker points.
// A profitable trade always yields a positive delta: close minus open for
// buys, open minus close for sells. The tick size is looked up at most
// once per symbol; a missing or zero tick size drops that symbol's
// positions from the total instead of failing the run. The running total
// stays a float and is truncated only on emission.
func totalPoints(closed []*types.Position, src PointSource) int64 {
	if src == nil {
		return 0
	}

	cache := make(map[string]float64, 4)
	var total float64
	for _, p := range closed {
		point, ok := cache[p.Symbol]
		if !ok {
			v, err := src.Point(p.Symbol)
			if err != nil {
				v = 0
			}
			cache[p.Symbol] = v
			point = v
		}
		if point <= 0 {
			continue
		}

		diff := p.ClosePrice - p.OpenPrice
		if p.Side == types.SideSell {
			diff = p.OpenPrice - p.ClosePrice
		}
		total += diff / point
	}
	return int64(math.Trunc(total))
}
