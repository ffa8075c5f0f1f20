package models

// RiskBand is a coarse classification of a customer's scaled risk score.
type RiskBand string

const (
	BandLow      RiskBand = "Low"
	BandMedium   RiskBand = "Medium"
	BandHigh     RiskBand = "High"
	BandCritical RiskBand = "Critical"
)

// BandForScore maps a risk score to its band. Intervals are half-open:
// [0,25) Low, [25,50) Medium, [50,75) High, [75,100) Critical. Anything at or
// above 100 falls through to Critical, which catches the max-scaled customer
// at exactly 100.0.
func BandForScore(score float64) RiskBand {
	switch {
	case score >= 0 && score < 25:
		return BandLow
	case score >= 25 && score < 50:
		return BandMedium
	case score >= 50 && score < 75:
		return BandHigh
	default:
		return BandCritical
	}
}

// CustomerRisk is one row per unique originator, aggregated from FeatureRows
// and carrying the scoring outputs. Aggregated feature values use the original
// column names in JSON so exports line up with the feature table.
type CustomerRisk struct {
	NameOrig string `json:"nameOrig"`

	// Mean-aggregated features.
	Amount           float64 `json:"amount"`
	BalanceRatioOrig float64 `json:"balance_ratio_orig"`
	TxnTotalCustomer float64 `json:"trns_total_customer"`
	TxnAvgCustomer   float64 `json:"trns_avg_customer"`
	TxnMaxCustomer   float64 `json:"trns_max_customer"`
	RollingMean      float64 `json:"rolling_mean_amount"`
	RollingMax       float64 `json:"rolling_max_amount"`

	// Sum-aggregated features.
	FullDrains       float64 `json:"is_full_drain"`
	TxnCountCustomer float64 `json:"trns_count_customer"`
	DailyTxnVelocity float64 `json:"daily_trns_velocity"`

	// One z-score per eligible feature, keyed by feature name.
	ZScores map[string]float64 `json:"zscores,omitempty"`

	CompositeZScore float64  `json:"composite_zscore"`
	RiskScore       float64  `json:"risk_score"`
	RiskBand        RiskBand `json:"risk_band"`
	IsAnomaly       bool     `json:"is_anomaly"`
}

// CustomerScore is the identifying/score projection of CustomerRisk.
type CustomerScore struct {
	NameOrig        string   `json:"nameOrig"`
	CompositeZScore float64  `json:"composite_zscore"`
	RiskScore       float64  `json:"risk_score"`
	RiskBand        RiskBand `json:"risk_band"`
	IsAnomaly       bool     `json:"is_anomaly"`
}

// BandStat is a per-band count with its share of the population.
type BandStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// RiskSummary describes one scoring run over the customer population.
type RiskSummary struct {
	TotalCustomers int      `json:"total_customers"`
	Anomalies      int      `json:"anomalies"`
	Low            BandStat `json:"low"`
	Medium         BandStat `json:"medium"`
	High           BandStat `json:"high"`
	Critical       BandStat `json:"critical"`
}
