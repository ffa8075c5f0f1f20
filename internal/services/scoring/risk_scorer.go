package scoring

import (
	"math"
	"sort"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/montanaflynn/stats"
)

const stage = "scoring"

// DefaultAnomalyZThreshold flags customers whose composite z-score exceeds it.
const DefaultAnomalyZThreshold = 2.0

type aggKind int

const (
	aggMean aggKind = iota
	aggSum
)

// riskFeature binds a candidate feature name to its customer-level
// aggregation rule and its slot on CustomerRisk.
type riskFeature struct {
	name string
	agg  aggKind
	get  func(*models.CustomerRisk) float64
	set  func(*models.CustomerRisk, float64)
}

// Candidate features for scoring. Count-like fields aggregate by sum, the
// rest by mean. Eligibility is decided per run: a feature with zero variance
// across the customer population is silently dropped, so different datasets
// may score over different feature sets.
var riskFeatures = []riskFeature{
	{"amount", aggMean,
		func(c *models.CustomerRisk) float64 { return c.Amount },
		func(c *models.CustomerRisk, v float64) { c.Amount = v }},
	{"balance_ratio_orig", aggMean,
		func(c *models.CustomerRisk) float64 { return c.BalanceRatioOrig },
		func(c *models.CustomerRisk, v float64) { c.BalanceRatioOrig = v }},
	{"is_full_drain", aggSum,
		func(c *models.CustomerRisk) float64 { return c.FullDrains },
		func(c *models.CustomerRisk, v float64) { c.FullDrains = v }},
	{"trns_count_customer", aggSum,
		func(c *models.CustomerRisk) float64 { return c.TxnCountCustomer },
		func(c *models.CustomerRisk, v float64) { c.TxnCountCustomer = v }},
	{"trns_total_customer", aggMean,
		func(c *models.CustomerRisk) float64 { return c.TxnTotalCustomer },
		func(c *models.CustomerRisk, v float64) { c.TxnTotalCustomer = v }},
	{"trns_avg_customer", aggMean,
		func(c *models.CustomerRisk) float64 { return c.TxnAvgCustomer },
		func(c *models.CustomerRisk, v float64) { c.TxnAvgCustomer = v }},
	{"trns_max_customer", aggMean,
		func(c *models.CustomerRisk) float64 { return c.TxnMaxCustomer },
		func(c *models.CustomerRisk, v float64) { c.TxnMaxCustomer = v }},
	{"daily_trns_velocity", aggSum,
		func(c *models.CustomerRisk) float64 { return c.DailyTxnVelocity },
		func(c *models.CustomerRisk, v float64) { c.DailyTxnVelocity = v }},
	{"rolling_mean_amount", aggMean,
		func(c *models.CustomerRisk) float64 { return c.RollingMean },
		func(c *models.CustomerRisk, v float64) { c.RollingMean = v }},
	{"rolling_max_amount", aggMean,
		func(c *models.CustomerRisk) float64 { return c.RollingMax },
		func(c *models.CustomerRisk, v float64) { c.RollingMax = v }},
}

// Scorer computes customer-level risk scores from feature rows. It is a pure
// stage: the anomaly threshold is fixed at construction and all population
// statistics are recomputed per call.
type Scorer struct {
	zThreshold float64
}

func NewScorer(anomalyZThreshold float64) *Scorer {
	if anomalyZThreshold <= 0 {
		anomalyZThreshold = DefaultAnomalyZThreshold
	}
	return &Scorer{zThreshold: anomalyZThreshold}
}

// ComputeRiskScores aggregates feature rows to one row per originator,
// z-scores the eligible features against the customer population, and derives
// composite score, 0-100 risk score, band, and anomaly flag.
func (s *Scorer) ComputeRiskScores(rows []models.FeatureRow) ([]models.CustomerRisk, error) {
	if len(rows) == 0 {
		return nil, errs.New(errs.KindEmptyInput, stage, "no feature rows to score")
	}

	customers := aggregateToCustomer(rows)

	eligible, err := eligibleFeatures(customers)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, errs.New(errs.KindNoVariance, stage,
			"no feature has non-zero variance across %d customers", len(customers))
	}

	if err := computeZScores(customers, eligible); err != nil {
		return nil, err
	}
	computeComposite(customers, eligible)
	if err := scaleRiskScores(customers); err != nil {
		return nil, err
	}

	for i := range customers {
		customers[i].RiskBand = models.BandForScore(customers[i].RiskScore)
		customers[i].IsAnomaly = customers[i].CompositeZScore > s.zThreshold
	}

	return customers, nil
}

// aggregateToCustomer groups rows by originator, summing count-like features
// and averaging the rest. Output is sorted by originator id.
func aggregateToCustomer(rows []models.FeatureRow) []models.CustomerRisk {
	index := make(map[string]int)
	customers := make([]models.CustomerRisk, 0)
	counts := make([]int, 0)

	for i := range rows {
		idx, ok := index[rows[i].NameOrig]
		if !ok {
			idx = len(customers)
			index[rows[i].NameOrig] = idx
			customers = append(customers, models.CustomerRisk{NameOrig: rows[i].NameOrig})
			counts = append(counts, 0)
		}
		counts[idx]++
		c := &customers[idx]
		for _, f := range riskFeatures {
			f.set(c, f.get(c)+rowFeature(&rows[i], f.name))
		}
	}

	for idx := range customers {
		c := &customers[idx]
		n := float64(counts[idx])
		for _, f := range riskFeatures {
			if f.agg == aggMean {
				f.set(c, f.get(c)/n)
			}
		}
	}

	sort.Slice(customers, func(i, j int) bool {
		return customers[i].NameOrig < customers[j].NameOrig
	})
	return customers
}

func rowFeature(r *models.FeatureRow, name string) float64 {
	switch name {
	case "amount":
		return r.Amount
	case "balance_ratio_orig":
		return r.BalanceRatioOrig
	case "is_full_drain":
		if r.IsFullDrain {
			return 1
		}
		return 0
	case "trns_count_customer":
		return r.TxnCountCustomer
	case "trns_total_customer":
		return r.TxnTotalCustomer
	case "trns_avg_customer":
		return r.TxnAvgCustomer
	case "trns_max_customer":
		return r.TxnMaxCustomer
	case "daily_trns_velocity":
		return r.DailyTxnVelocity
	case "rolling_mean_amount":
		return r.RollingMeanAmount
	case "rolling_max_amount":
		return r.RollingMaxAmount
	}
	return 0
}

// eligibleFeatures keeps candidates with non-zero standard deviation across
// the customer population.
func eligibleFeatures(customers []models.CustomerRisk) ([]riskFeature, error) {
	eligible := make([]riskFeature, 0, len(riskFeatures))
	for _, f := range riskFeatures {
		values := featureColumn(customers, f)
		sd, err := stats.StandardDeviationPopulation(values)
		if err != nil {
			return nil, errs.Wrap(errs.KindComputation, stage, err, "stddev of "+f.name)
		}
		if sd > 0 {
			eligible = append(eligible, f)
		}
	}
	return eligible, nil
}

// computeZScores normalizes each eligible feature to a population z-score.
// Missing (NaN) values are treated as 0 before normalization.
func computeZScores(customers []models.CustomerRisk, eligible []riskFeature) error {
	for _, f := range eligible {
		values := featureColumn(customers, f)
		mean, err := stats.Mean(values)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "mean of "+f.name)
		}
		sd, err := stats.StandardDeviationPopulation(values)
		if err != nil {
			return errs.Wrap(errs.KindComputation, stage, err, "stddev of "+f.name)
		}
		for i := range customers {
			if customers[i].ZScores == nil {
				customers[i].ZScores = make(map[string]float64, len(eligible))
			}
			customers[i].ZScores[f.name] = (values[i] - mean) / sd
		}
	}
	return nil
}

func featureColumn(customers []models.CustomerRisk, f riskFeature) []float64 {
	values := make([]float64, len(customers))
	for i := range customers {
		v := f.get(&customers[i])
		if math.IsNaN(v) {
			v = 0
		}
		values[i] = v
	}
	return values
}

// computeComposite sets each customer's composite as the mean of the absolute
// per-feature z-scores.
func computeComposite(customers []models.CustomerRisk, eligible []riskFeature) {
	for i := range customers {
		sum := 0.0
		for _, f := range eligible {
			sum += math.Abs(customers[i].ZScores[f.name])
		}
		customers[i].CompositeZScore = sum / float64(len(eligible))
	}
}

// scaleRiskScores rescales composite z-scores linearly onto [0,100]. When the
// composite itself has no dispersion every customer gets exactly 50.0.
func scaleRiskScores(customers []models.CustomerRisk) error {
	composites := make([]float64, len(customers))
	for i := range customers {
		composites[i] = customers[i].CompositeZScore
	}
	min, err := stats.Min(composites)
	if err != nil {
		return errs.Wrap(errs.KindComputation, stage, err, "composite min")
	}
	max, err := stats.Max(composites)
	if err != nil {
		return errs.Wrap(errs.KindComputation, stage, err, "composite max")
	}

	for i := range customers {
		if max > min {
			customers[i].RiskScore = (customers[i].CompositeZScore - min) / (max - min) * 100
		} else {
			customers[i].RiskScore = 50.0
		}
	}
	return nil
}

// Projection returns the identifying/score columns for each customer.
func Projection(customers []models.CustomerRisk) []models.CustomerScore {
	out := make([]models.CustomerScore, len(customers))
	for i := range customers {
		out[i] = models.CustomerScore{
			NameOrig:        customers[i].NameOrig,
			CompositeZScore: customers[i].CompositeZScore,
			RiskScore:       customers[i].RiskScore,
			RiskBand:        customers[i].RiskBand,
			IsAnomaly:       customers[i].IsAnomaly,
		}
	}
	return out
}

// HighRisk returns High and Critical customers sorted by risk score
// descending, with originator id as a deterministic tie-break.
func HighRisk(customers []models.CustomerRisk) []models.CustomerRisk {
	out := make([]models.CustomerRisk, 0)
	for i := range customers {
		if customers[i].RiskBand == models.BandHigh || customers[i].RiskBand == models.BandCritical {
			out = append(out, customers[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].NameOrig < out[j].NameOrig
	})
	return out
}

// Summarize builds per-band counts and percentages plus the anomaly total.
func Summarize(customers []models.CustomerRisk) models.RiskSummary {
	summary := models.RiskSummary{TotalCustomers: len(customers)}
	for i := range customers {
		if customers[i].IsAnomaly {
			summary.Anomalies++
		}
		switch customers[i].RiskBand {
		case models.BandLow:
			summary.Low.Count++
		case models.BandMedium:
			summary.Medium.Count++
		case models.BandHigh:
			summary.High.Count++
		case models.BandCritical:
			summary.Critical.Count++
		}
	}
	if summary.TotalCustomers > 0 {
		total := float64(summary.TotalCustomers)
		summary.Low.Percent = round2(float64(summary.Low.Count) / total * 100)
		summary.Medium.Percent = round2(float64(summary.Medium.Count) / total * 100)
		summary.High.Percent = round2(float64(summary.High.Count) / total * 100)
		summary.Critical.Percent = round2(float64(summary.Critical.Count) / total * 100)
	}
	return summary
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
