package features

import (
	"testing"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(name string, step int, amount, oldOrig, newOrig float64) models.TransactionRow {
	return models.TransactionRow{
		Step:           step,
		Type:           "TRANSFER",
		Amount:         amount,
		NameOrig:       name,
		OldBalanceOrig: oldOrig,
		NewBalanceOrig: newOrig,
		NameDest:       "M1",
	}
}

func TestBuildFeatures_TransactionLevel(t *testing.T) {
	engine := NewEngine()

	rows, err := engine.BuildFeatures([]models.TransactionRow{
		txn("C1", 25, 500, 1000, 500),
		txn("C2", 3, 200, 0, 0),
		txn("C3", 7, 300, 300, 0),
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := make(map[string]models.FeatureRow)
	for _, r := range rows {
		byName[r.NameOrig] = r
	}

	assert.InDelta(t, 0.5, byName["C1"].BalanceRatioOrig, 1e-9)
	assert.False(t, byName["C1"].IsFullDrain)
	assert.Equal(t, 1, byName["C1"].HourOfDay)
	assert.Equal(t, 1, byName["C1"].Day)

	// zero old balance never divides; ratio stays 0
	assert.Equal(t, 0.0, byName["C2"].BalanceRatioOrig)
	assert.False(t, byName["C2"].IsFullDrain)

	assert.InDelta(t, 1.0, byName["C3"].BalanceRatioOrig, 1e-9)
	assert.True(t, byName["C3"].IsFullDrain)
}

func TestBuildFeatures_CustomerAggregatesAndRolling(t *testing.T) {
	engine := NewEngine()

	// C1: amounts 100..600 at steps 1..6, all on day 0
	input := make([]models.TransactionRow, 0, 6)
	for i := 1; i <= 6; i++ {
		input = append(input, txn("C1", i, float64(i*100), 10000, 9000))
	}

	rows, err := engine.BuildFeatures(input)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	for _, r := range rows {
		assert.Equal(t, 6.0, r.TxnCountCustomer)
		assert.Equal(t, 2100.0, r.TxnTotalCustomer)
		assert.Equal(t, 350.0, r.TxnAvgCustomer)
		assert.Equal(t, 600.0, r.TxnMaxCustomer)
		assert.Equal(t, 6.0, r.DailyTxnVelocity)
	}

	last := rows[5]
	assert.Equal(t, 6, last.Step)
	assert.InDelta(t, 400.0, last.RollingMeanAmount, 1e-9) // mean(200..600)
	assert.Equal(t, 600.0, last.RollingMaxAmount)

	// short windows at the start of the run
	assert.Equal(t, 100.0, rows[0].RollingMeanAmount)
	assert.InDelta(t, 150.0, rows[1].RollingMeanAmount, 1e-9)
}

func TestBuildFeatures_SortedByOriginatorThenStep(t *testing.T) {
	engine := NewEngine()

	rows, err := engine.BuildFeatures([]models.TransactionRow{
		txn("C2", 5, 10, 100, 90),
		txn("C1", 9, 20, 100, 80),
		txn("C1", 2, 30, 100, 70),
		txn("C2", 1, 40, 100, 60),
	})
	require.NoError(t, err)

	got := make([]string, 0, 4)
	for _, r := range rows {
		got = append(got, r.NameOrig)
	}
	assert.Equal(t, []string{"C1", "C1", "C2", "C2"}, got)
	assert.Equal(t, 2, rows[0].Step)
	assert.Equal(t, 9, rows[1].Step)
	assert.Equal(t, 1, rows[2].Step)
	assert.Equal(t, 5, rows[3].Step)
}

func TestBuildFeatures_Deterministic(t *testing.T) {
	engine := NewEngine()
	input := []models.TransactionRow{
		txn("C1", 1, 100, 500, 400),
		txn("C1", 2, 200, 400, 200),
		txn("C2", 1, 50, 100, 50),
	}

	first, err := engine.BuildFeatures(input)
	require.NoError(t, err)
	second, err := engine.BuildFeatures(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildFeatures_RollingSensitiveToStepOrder(t *testing.T) {
	engine := NewEngine()

	forward := []models.TransactionRow{
		txn("C1", 1, 100, 1000, 900),
		txn("C1", 2, 200, 900, 700),
		txn("C1", 3, 900, 700, 0),
	}
	// same amounts, reversed step assignment
	reversed := []models.TransactionRow{
		txn("C1", 3, 100, 1000, 900),
		txn("C1", 2, 200, 900, 700),
		txn("C1", 1, 900, 700, 0),
	}

	fwd, err := engine.BuildFeatures(forward)
	require.NoError(t, err)
	rev, err := engine.BuildFeatures(reversed)
	require.NoError(t, err)

	fwdMeans := []float64{fwd[0].RollingMeanAmount, fwd[1].RollingMeanAmount, fwd[2].RollingMeanAmount}
	revMeans := []float64{rev[0].RollingMeanAmount, rev[1].RollingMeanAmount, rev[2].RollingMeanAmount}
	assert.NotEqual(t, fwdMeans, revMeans)
}

func TestBuildFeatures_VelocityPerDay(t *testing.T) {
	engine := NewEngine()

	rows, err := engine.BuildFeatures([]models.TransactionRow{
		txn("C1", 1, 100, 1000, 900),  // day 0
		txn("C1", 23, 100, 900, 800),  // day 0
		txn("C1", 24, 100, 800, 700),  // day 1
		txn("C2", 24, 100, 500, 400),  // day 1, different originator
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, rows[0].DailyTxnVelocity)
	assert.Equal(t, 2.0, rows[1].DailyTxnVelocity)
	assert.Equal(t, 1.0, rows[2].DailyTxnVelocity)
	assert.Equal(t, 1.0, rows[3].DailyTxnVelocity)
}

func TestBuildFeatures_EmptyInput(t *testing.T) {
	engine := NewEngine()

	_, err := engine.BuildFeatures(nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindEmptyInput))
}
