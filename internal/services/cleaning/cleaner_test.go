package cleaning

import (
	"math"
	"testing"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRow(step int, name string, amount float64) models.TransactionRow {
	return models.TransactionRow{
		Step: step, Type: "TRANSFER", Amount: amount,
		NameOrig: name, NameDest: "M1",
	}
}

func TestClean_ImputesNumericMedian(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", 100),
		rawRow(2, "C2", 300),
		rawRow(3, "C3", math.NaN()),
		rawRow(4, "C4", 200),
	}

	cleaned, st, err := NewCleaner().Clean(rows)
	require.NoError(t, err)
	require.Len(t, cleaned, 4)

	assert.Equal(t, 200.0, cleaned[2].Amount, "missing amount takes the column median")
	assert.Equal(t, 1, st.MissingHandled)
	assert.Equal(t, 4, st.FinalRecords)
}

func TestClean_ImputesCategoricalMode(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", 100),
		rawRow(2, "C2", 100),
		rawRow(3, "C3", 100),
	}
	rows[1].Type = "CASH_OUT"
	rows[2].Type = ""

	cleaned, st, err := NewCleaner().Clean(rows)
	require.NoError(t, err)

	assert.Equal(t, "TRANSFER", cleaned[2].Type, "blank type takes the column mode")
	assert.Equal(t, 1, st.MissingHandled)
}

func TestClean_ModeTieBreaksLexicographically(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", 100),
		rawRow(2, "C2", 100),
		rawRow(3, "C3", 100),
	}
	rows[0].Type = "TRANSFER"
	rows[1].Type = "CASH_OUT"
	rows[2].Type = ""

	cleaned, _, err := NewCleaner().Clean(rows)
	require.NoError(t, err)

	assert.Equal(t, "CASH_OUT", cleaned[2].Type)
}

func TestClean_DropsExactDuplicates(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", 100),
		rawRow(1, "C1", 100),
		rawRow(1, "C1", 100),
		rawRow(2, "C1", 100),
	}

	cleaned, st, err := NewCleaner().Clean(rows)
	require.NoError(t, err)

	assert.Len(t, cleaned, 2)
	assert.Equal(t, 2, st.DuplicatesRemoved)
	assert.Equal(t, 2, st.FinalRecords)
}

func TestClean_ZeroesNegativeAmounts(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", -50),
		rawRow(2, "C2", 75),
	}

	cleaned, st, err := NewCleaner().Clean(rows)
	require.NoError(t, err)

	assert.Equal(t, 0.0, cleaned[0].Amount)
	assert.Equal(t, 75.0, cleaned[1].Amount)
	assert.Equal(t, 1, st.InvalidZeroed)
	assert.Equal(t, 1, st.TotalIssues())
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	rows := []models.TransactionRow{
		rawRow(1, "C1", -50),
		rawRow(2, "C2", math.NaN()),
	}

	_, _, err := NewCleaner().Clean(rows)
	require.NoError(t, err)

	assert.Equal(t, -50.0, rows[0].Amount)
	assert.True(t, math.IsNaN(rows[1].Amount))
}

func TestClean_EmptyInput(t *testing.T) {
	_, _, err := NewCleaner().Clean(nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindEmptyInput))
}
