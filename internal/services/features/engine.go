package features

import (
	"sort"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/montanaflynn/stats"
)

const stage = "features"

// RollingWindow is the trailing transaction window for rolling features.
const RollingWindow = 5

// Engine derives behavioral features from cleaned transaction rows. It is a
// pure stage: same input, same output, no internal state.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// BuildFeatures derives per-transaction and per-customer features. The result
// is sorted by (originator asc, step asc); rolling features are computed over
// that order and downstream stages observe it.
func (e *Engine) BuildFeatures(cleaned []models.TransactionRow) ([]models.FeatureRow, error) {
	if len(cleaned) == 0 {
		return nil, errs.New(errs.KindEmptyInput, stage, "no transactions to build features from")
	}

	rows := make([]models.FeatureRow, len(cleaned))
	for i, t := range cleaned {
		fr := models.FeatureRow{TransactionRow: t}
		if t.OldBalanceOrig > 0 {
			fr.BalanceRatioOrig = t.Amount / t.OldBalanceOrig
		}
		fr.IsFullDrain = t.OldBalanceOrig > 0 && t.NewBalanceOrig == 0
		fr.HourOfDay = t.Step % 24
		fr.Day = t.Step / 24
		rows[i] = fr
	}

	if err := e.addCustomerFeatures(rows); err != nil {
		return nil, err
	}
	e.addVelocityFeatures(rows)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].NameOrig != rows[j].NameOrig {
			return rows[i].NameOrig < rows[j].NameOrig
		}
		return rows[i].Step < rows[j].Step
	})

	if err := e.addRollingFeatures(rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// addCustomerFeatures broadcasts per-originator count/total/mean/max of amount
// to every row of that originator.
func (e *Engine) addCustomerFeatures(rows []models.FeatureRow) error {
	amounts := make(map[string][]float64)
	for i := range rows {
		amounts[rows[i].NameOrig] = append(amounts[rows[i].NameOrig], rows[i].Amount)
	}

	type customerStats struct {
		count, total, mean, max float64
	}
	byCustomer := make(map[string]customerStats, len(amounts))
	for name, xs := range amounts {
		total, err := stats.Sum(xs)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "customer amount sum")
		}
		max, err := stats.Max(xs)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "customer amount max")
		}
		byCustomer[name] = customerStats{
			count: float64(len(xs)),
			total: total,
			mean:  total / float64(len(xs)),
			max:   max,
		}
	}

	for i := range rows {
		cs := byCustomer[rows[i].NameOrig]
		rows[i].TxnCountCustomer = cs.count
		rows[i].TxnTotalCustomer = cs.total
		rows[i].TxnAvgCustomer = cs.mean
		rows[i].TxnMaxCustomer = cs.max
	}
	return nil
}

// addVelocityFeatures counts transactions per (originator, day) and
// broadcasts the count to each such row.
func (e *Engine) addVelocityFeatures(rows []models.FeatureRow) {
	type dayKey struct {
		name string
		day  int
	}
	counts := make(map[dayKey]int)
	for i := range rows {
		counts[dayKey{rows[i].NameOrig, rows[i].Day}]++
	}
	for i := range rows {
		rows[i].DailyTxnVelocity = float64(counts[dayKey{rows[i].NameOrig, rows[i].Day}])
	}
}

// addRollingFeatures computes trailing-window mean and max of amount within
// each originator's ordered run. Windows shorter than RollingWindow at the
// start of a run use the rows available so far. Rows must already be sorted.
func (e *Engine) addRollingFeatures(rows []models.FeatureRow) error {
	runStart := 0
	for i := range rows {
		if rows[i].NameOrig != rows[runStart].NameOrig {
			runStart = i
		}
		from := i - RollingWindow + 1
		if from < runStart {
			from = runStart
		}
		window := make([]float64, 0, RollingWindow)
		for j := from; j <= i; j++ {
			window = append(window, rows[j].Amount)
		}
		mean, err := stats.Mean(window)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "rolling mean")
		}
		max, err := stats.Max(window)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "rolling max")
		}
		rows[i].RollingMeanAmount = mean
		rows[i].RollingMaxAmount = max
	}
	return nil
}
