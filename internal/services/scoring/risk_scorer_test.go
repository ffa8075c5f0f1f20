package scoring

import (
	"fmt"
	"testing"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frow(name string, amount float64) models.FeatureRow {
	return models.FeatureRow{
		TransactionRow: models.TransactionRow{NameOrig: name, Amount: amount},
	}
}

func TestComputeRiskScores_ScoresSpanFullRange(t *testing.T) {
	scorer := NewScorer(2.0)

	// one row per customer; only amount has variance
	customers, err := scorer.ComputeRiskScores([]models.FeatureRow{
		frow("C1", 10),
		frow("C2", 20),
		frow("C3", 90),
	})
	require.NoError(t, err)
	require.Len(t, customers, 3)

	byName := make(map[string]models.CustomerRisk)
	var min, max models.CustomerRisk
	min = customers[0]
	max = customers[0]
	for _, c := range customers {
		byName[c.NameOrig] = c
		if c.CompositeZScore < min.CompositeZScore {
			min = c
		}
		if c.CompositeZScore > max.CompositeZScore {
			max = c
		}
		assert.GreaterOrEqual(t, c.RiskScore, 0.0)
		assert.LessOrEqual(t, c.RiskScore, 100.0)
	}

	assert.Equal(t, 0.0, min.RiskScore)
	assert.Equal(t, 100.0, max.RiskScore)
	// the max-scaled customer lands in Critical via the >=100 fall-through
	assert.Equal(t, models.BandCritical, max.RiskBand)
}

func TestComputeRiskScores_IdenticalCompositesGetFifty(t *testing.T) {
	scorer := NewScorer(2.0)

	// two customers, one eligible feature: |z| is 1 for both, so the
	// composite has no dispersion
	customers, err := scorer.ComputeRiskScores([]models.FeatureRow{
		frow("C1", 10),
		frow("C2", 20),
	})
	require.NoError(t, err)
	require.Len(t, customers, 2)

	for _, c := range customers {
		assert.Equal(t, 50.0, c.RiskScore)
		assert.Equal(t, models.BandHigh, c.RiskBand)
	}
}

func TestComputeRiskScores_OutlierIsAnomalousAndHighBand(t *testing.T) {
	scorer := NewScorer(2.0)

	rows := make([]models.FeatureRow, 0, 10)
	for i := 0; i < 9; i++ {
		rows = append(rows, frow(fmt.Sprintf("C%d", i), 100))
	}
	rows = append(rows, frow("C9", 1000))

	customers, err := scorer.ComputeRiskScores(rows)
	require.NoError(t, err)
	require.Len(t, customers, 10)

	var outlier models.CustomerRisk
	for _, c := range customers {
		if c.NameOrig == "C9" {
			outlier = c
			continue
		}
		assert.False(t, c.IsAnomaly, "cluster customer %s should not be anomalous", c.NameOrig)
	}

	assert.True(t, outlier.IsAnomaly)
	assert.Contains(t, []models.RiskBand{models.BandHigh, models.BandCritical}, outlier.RiskBand)
}

func TestComputeRiskScores_NoVariance(t *testing.T) {
	scorer := NewScorer(2.0)

	// single customer: every feature has zero variance across the population
	_, err := scorer.ComputeRiskScores([]models.FeatureRow{frow("C1", 100)})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNoVariance))
}

func TestComputeRiskScores_EmptyInput(t *testing.T) {
	scorer := NewScorer(2.0)

	_, err := scorer.ComputeRiskScores(nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindEmptyInput))
}

func TestAggregateToCustomer_SumAndMeanRules(t *testing.T) {
	r1 := frow("C1", 100)
	r1.IsFullDrain = true
	r1.TxnCountCustomer = 2
	r1.DailyTxnVelocity = 2
	r1.TxnMaxCustomer = 200
	r2 := frow("C1", 200)
	r2.IsFullDrain = true
	r2.TxnCountCustomer = 2
	r2.DailyTxnVelocity = 2
	r2.TxnMaxCustomer = 200

	customers := aggregateToCustomer([]models.FeatureRow{r1, r2, frow("C2", 50)})
	require.Len(t, customers, 2)
	require.Equal(t, "C1", customers[0].NameOrig)

	c1 := customers[0]
	assert.Equal(t, 150.0, c1.Amount)           // mean
	assert.Equal(t, 2.0, c1.FullDrains)         // sum of 0/1 indicator
	assert.Equal(t, 4.0, c1.TxnCountCustomer)   // sum, per the source policy
	assert.Equal(t, 4.0, c1.DailyTxnVelocity)   // sum
	assert.Equal(t, 200.0, c1.TxnMaxCustomer)   // mean of broadcast value
}

func TestHighRiskSortedByScoreDescending(t *testing.T) {
	customers := []models.CustomerRisk{
		{NameOrig: "C1", RiskScore: 10, RiskBand: models.BandLow},
		{NameOrig: "C2", RiskScore: 80, RiskBand: models.BandCritical},
		{NameOrig: "C3", RiskScore: 60, RiskBand: models.BandHigh},
		{NameOrig: "C4", RiskScore: 30, RiskBand: models.BandMedium},
		{NameOrig: "C5", RiskScore: 70, RiskBand: models.BandHigh},
	}

	high := HighRisk(customers)
	require.Len(t, high, 3)
	assert.Equal(t, "C2", high[0].NameOrig)
	assert.Equal(t, "C5", high[1].NameOrig)
	assert.Equal(t, "C3", high[2].NameOrig)
}

func TestSummarize(t *testing.T) {
	customers := []models.CustomerRisk{
		{NameOrig: "C1", RiskBand: models.BandLow},
		{NameOrig: "C2", RiskBand: models.BandLow},
		{NameOrig: "C3", RiskBand: models.BandMedium},
		{NameOrig: "C4", RiskBand: models.BandCritical, IsAnomaly: true},
	}

	summary := Summarize(customers)
	assert.Equal(t, 4, summary.TotalCustomers)
	assert.Equal(t, 1, summary.Anomalies)
	assert.Equal(t, 2, summary.Low.Count)
	assert.Equal(t, 50.0, summary.Low.Percent)
	assert.Equal(t, 1, summary.Medium.Count)
	assert.Equal(t, 25.0, summary.Medium.Percent)
	assert.Equal(t, 0, summary.High.Count)
	assert.Equal(t, 1, summary.Critical.Count)
}

func TestProjection(t *testing.T) {
	customers := []models.CustomerRisk{
		{NameOrig: "C1", CompositeZScore: 1.5, RiskScore: 75, RiskBand: models.BandCritical, IsAnomaly: false},
	}

	proj := Projection(customers)
	require.Len(t, proj, 1)
	assert.Equal(t, "C1", proj[0].NameOrig)
	assert.Equal(t, 1.5, proj[0].CompositeZScore)
	assert.Equal(t, 75.0, proj[0].RiskScore)
	assert.Equal(t, models.BandCritical, proj[0].RiskBand)
	assert.False(t, proj[0].IsAnomaly)
}
