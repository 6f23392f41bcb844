package stats

import "mt5-bridge/internal/types"

// Trading style labels derived from the mean holding time.
const (
	StyleScalping = "Scalping"
	StyleIntraday = "Intraday"
	StyleSwing    = "Swing"
	StyleUnknown  = "Unknown"
)

// analyzeStreaks walks the chronologically sorted closed positions once
// and records the longest win and loss runs. A flat (zero-profit) trade
// breaks both streaks without extending either.
func analyzeStreaks(rec *types.StatisticsRecord, closed []*types.Position) {
	var winStreak, lossStreak int
	for _, p := range closed {
		switch {
		case p.Profit > 0:
			winStreak++
			lossStreak = 0
			if winStreak > rec.MaxConsecutiveWins {
				rec.MaxConsecutiveWins = winStreak
			}
		case p.Profit < 0:
			lossStreak++
			winStreak = 0
			if lossStreak > rec.MaxConsecutiveLosses {
				rec.MaxConsecutiveLosses = lossStreak
			}
		default:
			winStreak = 0
			lossStreak = 0
		}
	}
}

// analyzeHolding computes mean holding times (overall, wins, losses) and
// classifies the trading style from the overall mean. Negative durations
// (clock skew between the two legs) are discarded, not treated as fatal.
func analyzeHolding(rec *types.StatisticsRecord, closed []*types.Position) {
	var (
		total, wins, losses    int64
		nTotal, nWins, nLosses int
	)
	for _, p := range closed {
		d := p.HoldingSeconds()
		if d < 0 {
			continue
		}
		total += d
		nTotal++
		if p.Profit > 0 {
			wins += d
			nWins++
		} else if p.Profit < 0 {
			losses += d
			nLosses++
		}
	}

	if nTotal == 0 {
		rec.TradingStyle = StyleUnknown
		return
	}

	rec.AvgHoldingTime = float64(total) / float64(nTotal)
	if nWins > 0 {
		rec.AvgHoldingTimeWin = float64(wins) / float64(nWins)
	}
	if nLosses > 0 {
		rec.AvgHoldingTimeLoss = float64(losses) / float64(nLosses)
	}

	minutes := rec.AvgHoldingTime / 60
	switch {
	case minutes < 30:
		rec.TradingStyle = StyleScalping
	case minutes < 1440:
		rec.TradingStyle = StyleIntraday
	default:
		rec.TradingStyle = StyleSwing
	}
}
