package models

// FlaggedTransaction is a FeatureRow joined with its originator's risk
// outputs plus the transaction-level flag decision.
type FlaggedTransaction struct {
	FeatureRow

	RiskScore float64  `json:"risk_score"`
	RiskBand  RiskBand `json:"risk_band"`
	IsAnomaly bool     `json:"is_anomaly"`
	IsFlagged bool     `json:"is_flagged"`
}

// FlagSummary describes one flagging run. Band counts cover all transactions
// in the band, not only flagged ones.
type FlagSummary struct {
	TotalTransactions   int     `json:"total_transactions"`
	FlaggedTransactions int     `json:"flagged_transactions"`
	FlaggedPercentage   float64 `json:"flagged_percentage"`
	CriticalCount       int     `json:"critical_count"`
	HighCount           int     `json:"high_count"`
	MediumCount         int     `json:"medium_count"`
	RiskThresholdUsed   float64 `json:"risk_threshold_used"`
	Anomalies           int     `json:"anomalies"`
}
