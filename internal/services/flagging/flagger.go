package flagging

import (
	"math"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"
)

const stage = "flagging"

// DefaultRiskThreshold is the transaction-level flagging threshold.
const DefaultRiskThreshold = 50.0

// Flagger joins customer risk scores back onto transactions and applies the
// flagging threshold. The threshold is independent of banding so the two can
// be tuned separately.
type Flagger struct {
	riskThreshold float64
}

func NewFlagger(riskThreshold float64) *Flagger {
	return &Flagger{riskThreshold: riskThreshold}
}

// Threshold returns the flagging threshold in use.
func (f *Flagger) Threshold() float64 {
	return f.riskThreshold
}

// FlagTransactions looks up each row's originator in the customer risk table
// and flags rows whose originator scores at or above the threshold. An
// originator missing from the risk table degrades to score 0, band Low, no
// anomaly; a missing customer never fails the batch. Row order is preserved.
func (f *Flagger) FlagTransactions(rows []models.FeatureRow, customers []models.CustomerRisk) ([]models.FlaggedTransaction, error) {
	if len(rows) == 0 {
		return nil, errs.New(errs.KindEmptyInput, stage, "no transactions to flag")
	}

	scores := make(map[string]float64, len(customers))
	bands := make(map[string]models.RiskBand, len(customers))
	anomalies := make(map[string]bool, len(customers))
	for i := range customers {
		scores[customers[i].NameOrig] = customers[i].RiskScore
		bands[customers[i].NameOrig] = customers[i].RiskBand
		anomalies[customers[i].NameOrig] = customers[i].IsAnomaly
	}

	out := make([]models.FlaggedTransaction, len(rows))
	for i := range rows {
		ft := models.FlaggedTransaction{
			FeatureRow: rows[i],
			RiskScore:  scores[rows[i].NameOrig],
			RiskBand:   models.BandLow,
			IsAnomaly:  anomalies[rows[i].NameOrig],
		}
		if band, ok := bands[rows[i].NameOrig]; ok {
			ft.RiskBand = band
		}
		ft.IsFlagged = ft.RiskScore >= f.riskThreshold
		out[i] = ft
	}
	return out, nil
}

// Summarize builds the flagging summary over a flagged table. Band counts
// cover all transactions in each band, flagged or not.
func (f *Flagger) Summarize(rows []models.FlaggedTransaction) models.FlagSummary {
	summary := models.FlagSummary{
		TotalTransactions: len(rows),
		RiskThresholdUsed: f.riskThreshold,
	}
	for i := range rows {
		if rows[i].IsFlagged {
			summary.FlaggedTransactions++
		}
		if rows[i].IsAnomaly {
			summary.Anomalies++
		}
		switch rows[i].RiskBand {
		case models.BandCritical:
			summary.CriticalCount++
		case models.BandHigh:
			summary.HighCount++
		case models.BandMedium:
			summary.MediumCount++
		}
	}
	if summary.TotalTransactions > 0 {
		pct := float64(summary.FlaggedTransactions) / float64(summary.TotalTransactions) * 100
		summary.FlaggedPercentage = math.Round(pct*100) / 100
	}
	return summary
}

// FlaggedCount returns the number of flagged rows.
func FlaggedCount(rows []models.FlaggedTransaction) int {
	n := 0
	for i := range rows {
		if rows[i].IsFlagged {
			n++
		}
	}
	return n
}

// Flagged returns the flagged subset capped at maxRows, in the input row
// order (originator then step, as produced by feature building).
func Flagged(rows []models.FlaggedTransaction, maxRows int) []models.FlaggedTransaction {
	out := make([]models.FlaggedTransaction, 0)
	for i := range rows {
		if !rows[i].IsFlagged {
			continue
		}
		out = append(out, rows[i])
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
	}
	return out
}
