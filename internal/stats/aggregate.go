package stats

import "mt5-bridge/internal/types"

// aggregate fills the order-independent performance metrics: counts,
// win rate, profit factor, averages, best/worst trade, and the long/short
// breakdown. A position with exactly zero profit counts toward
// total_trades but toward neither wins nor losses.
func aggregate(rec *types.StatisticsRecord, closed []*types.Position) {
	var (
		wins, losses           int
		grossProfit, grossLoss float64
		buyWins, buyTotal      int
		sellWins, sellTotal    int
	)

	for i, p := range closed {
		rec.TotalProfit += p.Profit

		if i == 0 || p.Profit > rec.BestTrade {
			rec.BestTrade = p.Profit
		}
		if i == 0 || p.Profit < rec.WorstTrade {
			rec.WorstTrade = p.Profit
		}

		switch {
		case p.Profit > 0:
			wins++
			grossProfit += p.Profit
		case p.Profit < 0:
			losses++
			grossLoss += -p.Profit
		}

		if p.Side == types.SideBuy {
			buyTotal++
			if p.Profit > 0 {
				buyWins++
			}
		} else {
			sellTotal++
			if p.Profit > 0 {
				sellWins++
			}
		}
	}

	rec.TotalTrades = len(closed)
	rec.WinRate = rate(wins, len(closed))
	rec.WinRateBuy = rate(buyWins, buyTotal)
	rec.WinRateSell = rate(sellWins, sellTotal)

	switch {
	case grossLoss > 0:
		rec.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		// All-winning sample: no loss to divide by, report the gross.
		rec.ProfitFactor = grossProfit
	}

	if wins > 0 {
		rec.AvgWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		rec.AvgLoss = -(grossLoss / float64(losses))
	}
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
