package types

// SyncResult summarizes one completed account sync cycle.
type SyncResult struct {
	Nickname     string           `json:"nickname"`
	AccountID    int64            `json:"account_id"`
	DealCount    int              `json:"deal_count"`
	ClosedTrades int              `json:"closed_trades"`
	Record       StatisticsRecord `json:"record"`
}
