package db

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/types"
)

var _ interfaces.Store = (*DB)(nil)

func (d *DB) Participants(ctx context.Context) ([]types.Participant, error) {
	var rows []ParticipantRow
	if err := d.gorm.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	out := make([]types.Participant, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Participant{
			ID:               r.ID,
			Nickname:         r.Nickname,
			AccountID:        r.AccountID,
			InvestorPassword: r.InvestorPassword,
			Server:           r.Server,
		})
	}
	return out, nil
}

func (d *DB) UpsertDailyStats(ctx context.Context, participantID int64, rec types.StatisticsRecord) error {
	row := DailyStatRow{
		ParticipantID:        participantID,
		Date:                 rec.Date,
		Balance:              rec.Balance,
		Equity:               rec.Equity,
		Profit:               rec.TotalProfit,
		TotalTrades:          rec.TotalTrades,
		OpenTrades:           rec.OpenTrades,
		WinRate:              rec.WinRate,
		ProfitFactor:         rec.ProfitFactor,
		MaxDrawdownPct:       rec.MaxDrawdownPct,
		AvgWin:               rec.AvgWin,
		AvgLoss:              rec.AvgLoss,
		BestTrade:            rec.BestTrade,
		WorstTrade:           rec.WorstTrade,
		WinRateBuy:           rec.WinRateBuy,
		WinRateSell:          rec.WinRateSell,
		AvgHoldingTime:       rec.AvgHoldingTime,
		AvgHoldingTimeWin:    rec.AvgHoldingTimeWin,
		AvgHoldingTimeLoss:   rec.AvgHoldingTimeLoss,
		MaxConsecutiveWins:   rec.MaxConsecutiveWins,
		MaxConsecutiveLosses: rec.MaxConsecutiveLosses,
		TradingStyle:         rec.TradingStyle,
		FavoritePair:         rec.FavoritePair,
		TotalPoints:          rec.TotalPoints,
	}

	err := d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert daily_stats (participant=%d date=%s): %w", participantID, rec.Date, err)
	}
	return nil
}

func (d *DB) UpsertTrades(ctx context.Context, participantID int64, positions []*types.Position) error {
	if len(positions) == 0 {
		return nil
	}

	rows := make([]TradeRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, TradeRow{
			ParticipantID: participantID,
			PositionID:    p.ID,
			Symbol:        p.Symbol,
			Side:          p.Side.String(),
			Volume:        p.Volume,
			OpenTime:      p.OpenTime,
			CloseTime:     p.CloseTime,
			OpenPrice:     p.OpenPrice,
			ClosePrice:    p.ClosePrice,
			Profit:        p.Profit,
		})
	}

	err := d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}, {Name: "position_id"}},
		UpdateAll: true,
	}).CreateInBatches(rows, 200).Error
	if err != nil {
		return fmt.Errorf("upsert trades (participant=%d, %d rows): %w", participantID, len(rows), err)
	}
	return nil
}

func (d *DB) UpsertCandles(ctx context.Context, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	rows := make([]CandleRow, 0, len(candles))
	for _, c := range candles {
		rows = append(rows, CandleRow{
			Symbol: c.Symbol,
			Time:   c.Ts,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Vol,
		})
	}

	err := d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "time"}},
		UpdateAll: true,
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("upsert market_data (%d rows): %w", len(rows), err)
	}
	return nil
}
