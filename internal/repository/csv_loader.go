package repository

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"RiskScan/internal/domain/errs"
	"RiskScan/internal/domain/models"
)

const loaderStage = "load"

// CSVLoader reads raw transaction datasets and enforces the fixed
// required-column contract. Blank numeric cells become NaN and blank
// categorical cells stay empty; the cleaning stage imputes both.
type CSVLoader struct{}

func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Load reads the dataset at path. It fails on a missing file, a missing
// required column, an empty dataset, or a cell that is present but
// unparseable.
func (l *CSVLoader) Load(path string) ([]models.TransactionRow, error) {
	if !strings.HasSuffix(path, ".csv") {
		return nil, errs.New(errs.KindInputSchema, loaderStage, "only CSV files are supported: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindInputSchema, loaderStage, err, "open dataset")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.KindInputSchema, loaderStage, err, "read csv")
	}

	if len(records) < 2 {
		return nil, errs.New(errs.KindEmptyInput, loaderStage, "dataset is empty or missing data rows")
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]models.TransactionRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRow(record, cols, i+2)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	missing := make([]string, 0)
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errs.New(errs.KindInputSchema, loaderStage,
			"missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(record []string, cols columnIndex, line int) (models.TransactionRow, error) {
	var row models.TransactionRow

	cell := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	step, err := parseIntCell(cell("step"), "step", line)
	if err != nil {
		return row, err
	}
	row.Step = step
	row.Type = cell("type")
	row.NameOrig = cell("nameOrig")
	row.NameDest = cell("nameDest")

	for _, nc := range []struct {
		name string
		dst  *float64
	}{
		{"amount", &row.Amount},
		{"oldbalanceOrg", &row.OldBalanceOrig},
		{"newbalanceOrig", &row.NewBalanceOrig},
		{"oldbalanceDest", &row.OldBalanceDest},
		{"newbalanceDest", &row.NewBalanceDest},
	} {
		v, err := parseFloatCell(cell(nc.name), nc.name, line)
		if err != nil {
			return row, err
		}
		*nc.dst = v
	}

	isFraud, err := parseIntCell(cell("isFraud"), "isFraud", line)
	if err != nil {
		return row, err
	}
	row.IsFraud = isFraud

	isFlagged, err := parseIntCell(cell("isFlaggedFraud"), "isFlaggedFraud", line)
	if err != nil {
		return row, err
	}
	row.IsFlaggedFraud = isFlagged

	return row, nil
}

// parseFloatCell maps a blank cell to NaN (missing, for the cleaner) and
// fails on garbage.
func parseFloatCell(s, col string, line int) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.New(errs.KindInputSchema, loaderStage,
			"line %d: invalid numeric value %q in column %s", line, s, col)
	}
	return v, nil
}

// parseIntCell maps a blank integer cell to 0 and fails on garbage.
func parseIntCell(s, col string, line int) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.New(errs.KindInputSchema, loaderStage,
			"line %d: invalid integer value %q in column %s", line, s, col)
	}
	return v, nil
}
