package models

// FeatureRow is a TransactionRow extended with derived behavioral features.
// Rows are ordered by (NameOrig asc, Step asc); rolling features depend on
// that order.
type FeatureRow struct {
	TransactionRow

	BalanceRatioOrig float64 `json:"balance_ratio_orig"`
	IsFullDrain      bool    `json:"is_full_drain"`
	HourOfDay        int     `json:"hour_of_day"`
	Day              int     `json:"day"`

	// Per-originator aggregates broadcast to every row of that originator.
	TxnCountCustomer float64 `json:"trns_count_customer"`
	TxnTotalCustomer float64 `json:"trns_total_customer"`
	TxnAvgCustomer   float64 `json:"trns_avg_customer"`
	TxnMaxCustomer   float64 `json:"trns_max_customer"`

	// Count of the originator's transactions on the same day.
	DailyTxnVelocity float64 `json:"daily_trns_velocity"`

	// Trailing window over the originator's last 5 transactions.
	RollingMeanAmount float64 `json:"rolling_mean_amount"`
	RollingMaxAmount  float64 `json:"rolling_max_amount"`
}
