package stats

import "mt5-bridge/internal/types"

// maxDrawdownPct walks the closed positions in chronological order and
// tracks the largest peak-to-trough decline of the cumulative realized
// profit curve, expressed against the reconstructed balance at the peak.
//
// The starting balance is approximated as the current balance minus the
// total profit observed in the window, so the figure is exact only when
// the window spans the account's full history. The caller sorts closed
// by close time before handing it over.
func maxDrawdownPct(closed []*types.Position, balance float64) float64 {
	if len(closed) == 0 {
		return 0
	}

	var (
		cumulative  float64
		peak        float64
		maxDrawdown float64
		totalProfit float64
	)

	for i, p := range closed {
		cumulative += p.Profit
		totalProfit += p.Profit
		if i == 0 || cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	startBalance := balance - totalProfit
	peakBalance := startBalance + peak
	if peakBalance <= 0 {
		return 0
	}
	return maxDrawdown / peakBalance * 100
}
