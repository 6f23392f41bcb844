package types

// EntryKind distinguishes the opening and closing leg of a position.
// The gateway reports MT5 deal entries as integers: 0 = in, 1 = out.
type EntryKind int

const (
	EntryIn  EntryKind = 0
	EntryOut EntryKind = 1
)

// Side is the direction of a position, set on the opening leg.
type Side int

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// Deal is a single raw execution leg as reported by the terminal.
// Time is a unix timestamp in terminal server time; the terminal client
// is responsible for shifting it to UTC before deals reach the core.
type Deal struct {
	PositionID int64     `json:"position_id"`
	Entry      EntryKind `json:"entry"`
	Side       Side      `json:"type"`
	Time       int64     `json:"time"`
	Symbol     string    `json:"symbol"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price"`
	Profit     float64   `json:"profit"`
}

// Position is a round-trip trade reconstructed from matching IN/OUT deals.
// Profit accumulates over every OUT leg, so partial closes sum correctly.
type Position struct {
	ID         int64   `json:"position_id"`
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Volume     float64 `json:"volume"`
	OpenTime   int64   `json:"open_time"`
	CloseTime  int64   `json:"close_time"`
	OpenPrice  float64 `json:"open_price"`
	ClosePrice float64 `json:"close_price"`
	Profit     float64 `json:"profit"`
}

// Closed reports whether both legs of the position have been observed.
// Positions with a missing leg (still open, or the history window cut off
// the opening deal) are excluded from closed-trade statistics.
func (p *Position) Closed() bool {
	return p.OpenTime > 0 && p.CloseTime > 0
}

// HoldingSeconds is the open-to-close duration in seconds.
// May be negative under clock skew; callers discard negative values.
func (p *Position) HoldingSeconds() int64 {
	return p.CloseTime - p.OpenTime
}

// AccountSnapshot is the live account state at sync time.
type AccountSnapshot struct {
	Login   int64   `json:"login"`
	Balance float64 `json:"balance"`
	Equity  float64 `json:"equity"`
}

// StatisticsRecord is the flat metrics output of one analytics run.
// Holding times are seconds. AvgLoss is reported as a non-positive number.
type StatisticsRecord struct {
	Date                 string  `json:"date"`
	Balance              float64 `json:"balance"`
	Equity               float64 `json:"equity"`
	TotalProfit          float64 `json:"profit"`
	TotalTrades          int     `json:"total_trades"`
	OpenTrades           int     `json:"open_trades"`
	WinRate              float64 `json:"win_rate"`
	ProfitFactor         float64 `json:"profit_factor"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	BestTrade            float64 `json:"best_trade"`
	WorstTrade           float64 `json:"worst_trade"`
	WinRateBuy           float64 `json:"win_rate_buy"`
	WinRateSell          float64 `json:"win_rate_sell"`
	AvgHoldingTime       float64 `json:"avg_holding_time"`
	AvgHoldingTimeWin    float64 `json:"avg_holding_time_win"`
	AvgHoldingTimeLoss   float64 `json:"avg_holding_time_loss"`
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	TradingStyle         string  `json:"trading_style"`
	FavoritePair         string  `json:"favorite_pair"`
	TotalPoints          int64   `json:"total_points"`
}

// Candle is one OHLCV bar, time already normalized to UTC.
type Candle struct {
	Symbol string  `json:"symbol"`
	Ts     int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Vol    int64   `json:"volume"`
}

// Participant is one tracked account credential row.
type Participant struct {
	ID               int64  `json:"id"`
	Nickname         string `json:"nickname"`
	AccountID        int64  `json:"account_id"`
	InvestorPassword string `json:"investor_password"`
	Server           string `json:"server"`
}

// HasCredentials reports whether the row is complete enough to sync.
func (p *Participant) HasCredentials() bool {
	return p.AccountID != 0 && p.InvestorPassword != "" && p.Server != ""
}

// OrderReq is a market order request for the autotrade tool.
type OrderReq struct {
	Symbol string
	Side   Side
	Volume float64
	SL     float64
	TP     float64
	Tag    string
}

// OrderResp is the terminal's acknowledgement of an order.
type OrderResp struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Price   float64 `json:"price"`
}
