package cleaning

import (
	"math"
	"sort"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/montanaflynn/stats"
)

const stage = "cleaning"

// Stats reports what cleaning changed.
type Stats struct {
	MissingHandled    int `json:"missing_values_handled"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	InvalidZeroed     int `json:"invalid_value_count"`
	FinalRecords      int `json:"final_record_count"`
}

// TotalIssues returns the sum of all handled issues.
func (s Stats) TotalIssues() int {
	return s.MissingHandled + s.DuplicatesRemoved + s.InvalidZeroed
}

// Cleaner repairs raw transaction rows so downstream stages can assume no
// missing values, no duplicates, and non-negative amounts. Missing numeric
// cells (NaN from the loader) are imputed with the column median, missing
// categoricals with the column mode, exact-duplicate rows dropped, negative
// amounts zeroed.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

func (c *Cleaner) Clean(raw []models.TransactionRow) ([]models.TransactionRow, Stats, error) {
	if len(raw) == 0 {
		return nil, Stats{}, errs.New(errs.KindEmptyInput, stage, "no transactions to clean")
	}

	rows := make([]models.TransactionRow, len(raw))
	copy(rows, raw)
	var st Stats

	st.MissingHandled = c.imputeMissing(rows)

	rows, st.DuplicatesRemoved = c.dropDuplicates(rows)

	for i := range rows {
		if rows[i].Amount < 0 {
			rows[i].Amount = 0
			st.InvalidZeroed++
		}
	}

	st.FinalRecords = len(rows)
	return rows, st, nil
}

type numericField struct {
	get func(*models.TransactionRow) float64
	set func(*models.TransactionRow, float64)
}

var numericFields = []numericField{
	{func(r *models.TransactionRow) float64 { return r.Amount },
		func(r *models.TransactionRow, v float64) { r.Amount = v }},
	{func(r *models.TransactionRow) float64 { return r.OldBalanceOrig },
		func(r *models.TransactionRow, v float64) { r.OldBalanceOrig = v }},
	{func(r *models.TransactionRow) float64 { return r.NewBalanceOrig },
		func(r *models.TransactionRow, v float64) { r.NewBalanceOrig = v }},
	{func(r *models.TransactionRow) float64 { return r.OldBalanceDest },
		func(r *models.TransactionRow, v float64) { r.OldBalanceDest = v }},
	{func(r *models.TransactionRow) float64 { return r.NewBalanceDest },
		func(r *models.TransactionRow, v float64) { r.NewBalanceDest = v }},
}

type categoricalField struct {
	get func(*models.TransactionRow) string
	set func(*models.TransactionRow, string)
}

var categoricalFields = []categoricalField{
	{func(r *models.TransactionRow) string { return r.Type },
		func(r *models.TransactionRow, v string) { r.Type = v }},
	{func(r *models.TransactionRow) string { return r.NameOrig },
		func(r *models.TransactionRow, v string) { r.NameOrig = v }},
	{func(r *models.TransactionRow) string { return r.NameDest },
		func(r *models.TransactionRow, v string) { r.NameDest = v }},
}

func (c *Cleaner) imputeMissing(rows []models.TransactionRow) int {
	handled := 0

	for _, f := range numericFields {
		present := make([]float64, 0, len(rows))
		for i := range rows {
			if v := f.get(&rows[i]); !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		if len(present) == len(rows) {
			continue
		}
		median := 0.0
		if len(present) > 0 {
			median, _ = stats.Median(present)
		}
		for i := range rows {
			if math.IsNaN(f.get(&rows[i])) {
				f.set(&rows[i], median)
				handled++
			}
		}
	}

	for _, f := range categoricalFields {
		counts := make(map[string]int)
		for i := range rows {
			if v := f.get(&rows[i]); v != "" {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			continue
		}
		mode := modeOf(counts)
		for i := range rows {
			if f.get(&rows[i]) == "" {
				f.set(&rows[i], mode)
				handled++
			}
		}
	}

	return handled
}

// modeOf picks the most frequent value; ties break to the lexicographically
// smallest so imputation is deterministic.
func modeOf(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

func (c *Cleaner) dropDuplicates(rows []models.TransactionRow) ([]models.TransactionRow, int) {
	seen := make(map[models.TransactionRow]struct{}, len(rows))
	out := rows[:0]
	removed := 0
	for i := range rows {
		if _, ok := seen[rows[i]]; ok {
			removed++
			continue
		}
		seen[rows[i]] = struct{}{}
		out = append(out, rows[i])
	}
	return out, removed
}
