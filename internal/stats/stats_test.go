package stats

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"mt5-bridge/internal/types"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// roundTrip builds the IN/OUT deal pair for one closed position.
func roundTrip(id int64, symbol string, side types.Side, open, close int64, openPrice, closePrice, profit float64) []types.Deal {
	return []types.Deal{
		{PositionID: id, Entry: types.EntryIn, Side: side, Time: open, Symbol: symbol, Volume: 0.01, Price: openPrice},
		{PositionID: id, Entry: types.EntryOut, Time: close, Symbol: symbol, Price: closePrice, Profit: profit},
	}
}

// closedSequence builds one closed position per profit value, closing one
// hour apart in slice order.
func closedSequence(profits ...float64) []types.Deal {
	var deals []types.Deal
	base := testNow.Add(-24 * time.Hour).Unix()
	for i, p := range profits {
		open := base + int64(i)*3600
		deals = append(deals, roundTrip(int64(i+1), "XAUUSD", types.SideBuy, open, open+600, 2400, 2401, p)...)
	}
	return deals
}

func TestComputeEmptyInput(t *testing.T) {
	res, err := Compute(Input{Now: testNow, Balance: 1000})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	rec := res.Record
	if rec.TotalTrades != 0 {
		t.Errorf("TotalTrades = %d, want 0", rec.TotalTrades)
	}
	if rec.WinRate != 0 || rec.ProfitFactor != 0 || rec.MaxDrawdownPct != 0 {
		t.Errorf("expected zero ratios, got win_rate=%v profit_factor=%v max_dd=%v",
			rec.WinRate, rec.ProfitFactor, rec.MaxDrawdownPct)
	}
	if rec.FavoritePair != "-" {
		t.Errorf("FavoritePair = %q, want -", rec.FavoritePair)
	}
	if rec.TradingStyle != StyleUnknown {
		t.Errorf("TradingStyle = %q, want %q", rec.TradingStyle, StyleUnknown)
	}
}

func TestMissingPositionID(t *testing.T) {
	_, err := Compute(Input{
		Now:   testNow,
		Deals: []types.Deal{{Entry: types.EntryOut, Symbol: "XAUUSD", Profit: 5}},
	})
	if !errors.Is(err, ErrMissingPositionID) {
		t.Fatalf("err = %v, want ErrMissingPositionID", err)
	}
}

func TestPartialClose(t *testing.T) {
	deals := []types.Deal{
		{PositionID: 7, Entry: types.EntryIn, Side: types.SideBuy, Time: 1000, Symbol: "EURUSD", Volume: 0.2, Price: 1.10},
		{PositionID: 7, Entry: types.EntryOut, Time: 2000, Symbol: "EURUSD", Price: 1.11, Profit: 12.5},
		{PositionID: 7, Entry: types.EntryOut, Time: 3000, Symbol: "EURUSD", Price: 1.12, Profit: 7.5},
	}
	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if res.Record.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", res.Record.TotalTrades)
	}
	p := res.ByID[7]
	if p == nil {
		t.Fatal("position 7 missing from reconstruction map")
	}
	if p.Profit != 20 {
		t.Errorf("Profit = %v, want 20 (sum of partial closes)", p.Profit)
	}
	if p.CloseTime != 3000 {
		t.Errorf("CloseTime = %d, want 3000", p.CloseTime)
	}
}

func TestUnmatchedLegsExcluded(t *testing.T) {
	deals := []types.Deal{
		// OUT leg arrives before its IN leg: still one closed position.
		{PositionID: 1, Entry: types.EntryOut, Time: 2000, Symbol: "XAUUSD", Price: 2405, Profit: 50},
		{PositionID: 1, Entry: types.EntryIn, Side: types.SideBuy, Time: 1000, Symbol: "XAUUSD", Volume: 0.01, Price: 2400},
		// Truncated window: only the closing leg was fetched.
		{PositionID: 2, Entry: types.EntryOut, Time: 2500, Symbol: "XAUUSD", Price: 2410, Profit: -3},
		// Still open: only the opening leg exists.
		{PositionID: 3, Entry: types.EntryIn, Side: types.SideSell, Time: 3000, Symbol: "XAUUSD", Volume: 0.01, Price: 2412},
	}
	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if res.Record.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1 (unmatched legs excluded)", res.Record.TotalTrades)
	}
	if res.Record.OpenTrades != 2 {
		t.Errorf("OpenTrades = %d, want 2", res.Record.OpenTrades)
	}
	if len(res.ByID) != 3 {
		t.Errorf("reconstruction map has %d entries, want 3", len(res.ByID))
	}
}

func TestAggregateMetrics(t *testing.T) {
	// Wins: 30, 10. Losses: -20. Flat: 0.
	deals := closedSequence(30, -20, 0, 10)
	res, err := Compute(Input{Deals: deals, Now: testNow, Balance: 1020})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	rec := res.Record

	if rec.TotalTrades != 4 {
		t.Fatalf("TotalTrades = %d, want 4", rec.TotalTrades)
	}
	if rec.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50 (flat trade counts toward total only)", rec.WinRate)
	}
	if rec.ProfitFactor != 2 {
		t.Errorf("ProfitFactor = %v, want 2", rec.ProfitFactor)
	}
	if rec.AvgWin != 20 {
		t.Errorf("AvgWin = %v, want 20", rec.AvgWin)
	}
	if rec.AvgLoss != -20 {
		t.Errorf("AvgLoss = %v, want -20", rec.AvgLoss)
	}
	if rec.BestTrade != 30 || rec.WorstTrade != -20 {
		t.Errorf("Best/Worst = %v/%v, want 30/-20", rec.BestTrade, rec.WorstTrade)
	}
	if rec.TotalProfit != 20 {
		t.Errorf("TotalProfit = %v, want 20", rec.TotalProfit)
	}
}

func TestProfitFactorAllWinning(t *testing.T) {
	res, err := Compute(Input{Deals: closedSequence(10, 5), Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.ProfitFactor != 15 {
		t.Errorf("ProfitFactor = %v, want gross profit 15 when there are no losses", res.Record.ProfitFactor)
	}
}

func TestSideBreakdown(t *testing.T) {
	var deals []types.Deal
	base := testNow.Add(-12 * time.Hour).Unix()
	deals = append(deals, roundTrip(1, "XAUUSD", types.SideBuy, base, base+60, 2400, 2401, 10)...)
	deals = append(deals, roundTrip(2, "XAUUSD", types.SideBuy, base+100, base+160, 2400, 2399, -5)...)
	deals = append(deals, roundTrip(3, "XAUUSD", types.SideSell, base+200, base+260, 2400, 2399, 8)...)

	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.WinRateBuy != 50 {
		t.Errorf("WinRateBuy = %v, want 50", res.Record.WinRateBuy)
	}
	if res.Record.WinRateSell != 100 {
		t.Errorf("WinRateSell = %v, want 100", res.Record.WinRateSell)
	}
}

func TestWinRateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(20)
		profits := make([]float64, n)
		for i := range profits {
			profits[i] = float64(rng.Intn(21) - 10)
		}
		res, err := Compute(Input{Deals: closedSequence(profits...), Now: testNow})
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		wr := res.Record.WinRate
		if wr < 0 || wr > 100 {
			t.Fatalf("trial %d: WinRate = %v out of [0,100]", trial, wr)
		}
	}
}

func TestStreaks(t *testing.T) {
	res, err := Compute(Input{Deals: closedSequence(5, 3, -2, -1, -4, 1), Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.MaxConsecutiveWins != 2 {
		t.Errorf("MaxConsecutiveWins = %d, want 2", res.Record.MaxConsecutiveWins)
	}
	if res.Record.MaxConsecutiveLosses != 3 {
		t.Errorf("MaxConsecutiveLosses = %d, want 3", res.Record.MaxConsecutiveLosses)
	}
}

func TestFlatTradeBreaksStreak(t *testing.T) {
	res, err := Compute(Input{Deals: closedSequence(5, 5, 0, 5), Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.MaxConsecutiveWins != 2 {
		t.Errorf("MaxConsecutiveWins = %d, want 2 (flat trade breaks the run)", res.Record.MaxConsecutiveWins)
	}
}

func TestDrawdown(t *testing.T) {
	// Curve: +100 (peak) -> -80 -> +20. Max drawdown value = 180.
	// Total profit = 20, balance 1020 -> start 1000, peak balance 1100.
	deals := closedSequence(100, -180, 100)
	res, err := Compute(Input{Deals: deals, Now: testNow, Balance: 1020})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := 180.0 / 1100 * 100
	got := res.Record.MaxDrawdownPct
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("MaxDrawdownPct = %v, want %v", got, want)
	}

	// Reprocessing the identical sorted sequence is deterministic.
	res2, _ := Compute(Input{Deals: deals, Now: testNow, Balance: 1020})
	if res2.Record.MaxDrawdownPct != got {
		t.Errorf("second run MaxDrawdownPct = %v, want %v", res2.Record.MaxDrawdownPct, got)
	}
}

func TestOrderIndependence(t *testing.T) {
	deals := closedSequence(100, -150, 30, 5, -10, 40)
	res, err := Compute(Input{Deals: deals, Now: testNow, Balance: 1015})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	shuffled := make([]types.Deal, len(deals))
	copy(shuffled, deals)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	res2, err := Compute(Input{Deals: shuffled, Now: testNow, Balance: 1015})
	if err != nil {
		t.Fatalf("Compute shuffled: %v", err)
	}

	// Deal arrival order never matters: positions are keyed by id and the
	// path-dependent analyzers sort by close time internally.
	if res.Record != res2.Record {
		t.Errorf("record differs under deal shuffle:\n  %+v\n  %+v", res.Record, res2.Record)
	}
}

func TestChronologyMatters(t *testing.T) {
	// Same multiset of profits, different close-time order: the aggregate
	// metrics agree but the path-dependent ones differ.
	a, err := Compute(Input{Deals: closedSequence(100, -150, 30), Now: testNow, Balance: 1000})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(Input{Deals: closedSequence(-150, 30, 100), Now: testNow, Balance: 1000})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if a.Record.WinRate != b.Record.WinRate || a.Record.ProfitFactor != b.Record.ProfitFactor {
		t.Errorf("aggregate metrics should be order-invariant")
	}
	if a.Record.MaxDrawdownPct == b.Record.MaxDrawdownPct {
		t.Errorf("MaxDrawdownPct identical (%v) despite reordered close times", a.Record.MaxDrawdownPct)
	}
}

func TestTradingStyle(t *testing.T) {
	cases := []struct {
		name    string
		holding time.Duration
		want    string
	}{
		{"scalping", 10 * time.Minute, StyleScalping},
		{"intraday", 45 * time.Minute, StyleIntraday},
		{"swing", 72 * time.Hour, StyleSwing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			open := testNow.Add(-30 * 24 * time.Hour).Unix()
			deals := roundTrip(1, "XAUUSD", types.SideBuy, open, open+int64(tc.holding.Seconds()), 2400, 2401, 5)
			res, err := Compute(Input{Deals: deals, Now: testNow})
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if res.Record.TradingStyle != tc.want {
				t.Errorf("TradingStyle = %q, want %q", res.Record.TradingStyle, tc.want)
			}
		})
	}
}

func TestNegativeHoldingDiscarded(t *testing.T) {
	// Close timestamp before open (clock skew): excluded from duration
	// aggregates but still a closed trade.
	deals := []types.Deal{
		{PositionID: 1, Entry: types.EntryIn, Side: types.SideBuy, Time: 5000, Symbol: "XAUUSD", Volume: 0.01, Price: 2400},
		{PositionID: 1, Entry: types.EntryOut, Time: 4000, Symbol: "XAUUSD", Price: 2401, Profit: 5},
	}
	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", res.Record.TotalTrades)
	}
	if res.Record.AvgHoldingTime != 0 {
		t.Errorf("AvgHoldingTime = %v, want 0", res.Record.AvgHoldingTime)
	}
	if res.Record.TradingStyle != StyleUnknown {
		t.Errorf("TradingStyle = %q, want %q with no valid durations", res.Record.TradingStyle, StyleUnknown)
	}
}

func TestFavoritePair(t *testing.T) {
	var deals []types.Deal
	base := testNow.Add(-time.Hour).Unix()
	deals = append(deals, roundTrip(1, "XAUUSD", types.SideBuy, base, base+60, 2400, 2401, 1)...)
	deals = append(deals, roundTrip(2, "EURUSD", types.SideBuy, base+100, base+160, 1.1, 1.2, 1)...)
	// An open EURUSD position still counts toward the favorite pair.
	deals = append(deals, types.Deal{PositionID: 3, Entry: types.EntryIn, Side: types.SideBuy, Time: base + 200, Symbol: "EURUSD", Volume: 0.01, Price: 1.1})

	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.FavoritePair != "EURUSD" {
		t.Errorf("FavoritePair = %q, want EURUSD", res.Record.FavoritePair)
	}
}

func TestFavoritePairTieStable(t *testing.T) {
	var deals []types.Deal
	base := testNow.Add(-time.Hour).Unix()
	deals = append(deals, roundTrip(1, "XAUUSD", types.SideBuy, base, base+60, 2400, 2401, 1)...)
	deals = append(deals, roundTrip(2, "EURUSD", types.SideBuy, base+100, base+160, 1.1, 1.2, 1)...)

	res, err := Compute(Input{Deals: deals, Now: testNow})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Record.FavoritePair != "XAUUSD" {
		t.Errorf("FavoritePair = %q, want first-encountered XAUUSD on a tie", res.Record.FavoritePair)
	}
}
