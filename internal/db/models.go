package db

import "time"

// ParticipantRow mirrors the hosted participants table. Credentials are
// investor (read-only) passwords, never trading passwords.
type ParticipantRow struct {
	ID               int64  `gorm:"primaryKey"`
	Nickname         string `gorm:"size:64"`
	AccountID        int64
	InvestorPassword string `gorm:"size:128"`
	Server           string `gorm:"size:64"`
	CreatedAt        time.Time
}

func (ParticipantRow) TableName() string { return "participants" }

// DailyStatRow is one statistics record per participant per day,
// upserted on conflict so repeated sync cycles overwrite in place.
type DailyStatRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	ParticipantID int64  `gorm:"uniqueIndex:idx_participant_date"`
	Date          string `gorm:"size:10;uniqueIndex:idx_participant_date"`

	Balance              float64
	Equity               float64
	Profit               float64
	TotalTrades          int
	OpenTrades           int
	WinRate              float64
	ProfitFactor         float64
	MaxDrawdownPct       float64
	AvgWin               float64
	AvgLoss              float64
	BestTrade            float64
	WorstTrade           float64
	WinRateBuy           float64
	WinRateSell          float64
	AvgHoldingTime       float64
	AvgHoldingTimeWin    float64
	AvgHoldingTimeLoss   float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	TradingStyle         string `gorm:"size:16"`
	FavoritePair         string `gorm:"size:32"`
	TotalPoints          int64

	UpdatedAt time.Time
}

func (DailyStatRow) TableName() string { return "daily_stats" }

// TradeRow is one closed position, upserted on (participant, position).
type TradeRow struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	ParticipantID int64 `gorm:"uniqueIndex:idx_participant_position"`
	PositionID    int64 `gorm:"uniqueIndex:idx_participant_position"`

	Symbol     string `gorm:"size:32"`
	Side       string `gorm:"size:4"`
	Volume     float64
	OpenTime   int64
	CloseTime  int64
	OpenPrice  float64
	ClosePrice float64
	Profit     float64

	UpdatedAt time.Time
}

func (TradeRow) TableName() string { return "trades" }

// CandleRow is one normalized OHLCV bar, upserted on (symbol, time).
type CandleRow struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	Symbol string `gorm:"size:32;uniqueIndex:idx_symbol_time"`
	Time   int64  `gorm:"uniqueIndex:idx_symbol_time"`
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

func (CandleRow) TableName() string { return "market_data" }
