package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"RiskScan/internal/domain/models"
)

// Paths holds the files one report run wrote.
type Paths struct {
	FlaggedCSV string `json:"flagged_csv"`
	RiskCSV    string `json:"risk_csv"`
	TextReport string `json:"text_report"`
}

// Generator writes CSV exports and a formatted text report for a completed
// run.
type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Generator{outputDir: outputDir}, nil
}

// Generate writes all three report files and returns their paths.
func (g *Generator) Generate(
	flagged []models.FlaggedTransaction,
	customers []models.CustomerRisk,
	flagSummary models.FlagSummary,
	riskSummary models.RiskSummary,
) (Paths, error) {
	var paths Paths
	var err error

	if paths.FlaggedCSV, err = g.writeFlaggedCSV(flagged); err != nil {
		return paths, err
	}
	if paths.RiskCSV, err = g.writeRiskCSV(customers); err != nil {
		return paths, err
	}
	if paths.TextReport, err = g.writeTextReport(flagSummary, riskSummary); err != nil {
		return paths, err
	}
	return paths, nil
}

func (g *Generator) writeFlaggedCSV(flagged []models.FlaggedTransaction) (string, error) {
	path := filepath.Join(g.outputDir, "flagged_transactions.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create flagged csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{
		"nameOrig", "nameDest", "type", "amount",
		"oldbalanceOrg", "newbalanceOrig",
		"risk_score", "risk_band", "is_anomaly", "is_flagged",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write flagged header: %w", err)
	}

	for i := range flagged {
		r := &flagged[i]
		record := []string{
			r.NameOrig,
			r.NameDest,
			r.Type,
			formatFloat(r.Amount),
			formatFloat(r.OldBalanceOrig),
			formatFloat(r.NewBalanceOrig),
			formatFloat(r.RiskScore),
			string(r.RiskBand),
			strconv.FormatBool(r.IsAnomaly),
			strconv.FormatBool(r.IsFlagged),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write flagged record: %w", err)
		}
	}
	return path, nil
}

func (g *Generator) writeRiskCSV(customers []models.CustomerRisk) (string, error) {
	path := filepath.Join(g.outputDir, "customer_risk_summary.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create risk csv: %w", err)
	}
	defer file.Close()

	sorted := make([]models.CustomerRisk, len(customers))
	copy(sorted, customers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RiskScore != sorted[j].RiskScore {
			return sorted[i].RiskScore > sorted[j].RiskScore
		}
		return sorted[i].NameOrig < sorted[j].NameOrig
	})

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"nameOrig", "composite_zscore", "risk_score", "risk_band", "is_anomaly"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write risk header: %w", err)
	}
	for i := range sorted {
		c := &sorted[i]
		record := []string{
			c.NameOrig,
			formatFloat(c.CompositeZScore),
			formatFloat(c.RiskScore),
			string(c.RiskBand),
			strconv.FormatBool(c.IsAnomaly),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write risk record: %w", err)
		}
	}
	return path, nil
}

func (g *Generator) writeTextReport(flagSummary models.FlagSummary, riskSummary models.RiskSummary) (string, error) {
	path := filepath.Join(g.outputDir, "report.txt")

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(strings.Repeat("=", 60))
	line("BANK TRANSACTION ANALYSIS REPORT")
	line("Generated: %s", time.Now().Format("2006-01-02 15:04:05"))
	line(strings.Repeat("=", 60))
	line("")

	line(strings.Repeat("-", 40))
	line("TRANSACTION FLAGGING SUMMARY")
	line(strings.Repeat("-", 40))
	line("Total Transactions: %d", flagSummary.TotalTransactions)
	line("Flagged Transactions: %d", flagSummary.FlaggedTransactions)
	line("Flagged Percentage: %.2f%%", flagSummary.FlaggedPercentage)
	line("Risk Threshold Used: %.1f", flagSummary.RiskThresholdUsed)
	line("")

	line("Flagged by Risk Band:")
	line("  - Critical: %d", flagSummary.CriticalCount)
	line("  - High: %d", flagSummary.HighCount)
	line("  - Medium: %d", flagSummary.MediumCount)
	line("")

	line(strings.Repeat("-", 40))
	line("CUSTOMER RISK SUMMARY")
	line(strings.Repeat("-", 40))
	line("Total Customers Scored: %d", riskSummary.TotalCustomers)
	line("Anomalies Detected: %d", riskSummary.Anomalies)
	line("")

	line("Risk Band Distribution:")
	line("  - Low: %d (%.2f%%)", riskSummary.Low.Count, riskSummary.Low.Percent)
	line("  - Medium: %d (%.2f%%)", riskSummary.Medium.Count, riskSummary.Medium.Percent)
	line("  - High: %d (%.2f%%)", riskSummary.High.Count, riskSummary.High.Percent)
	line("  - Critical: %d (%.2f%%)", riskSummary.Critical.Count, riskSummary.Critical.Percent)
	line("")

	line(strings.Repeat("-", 40))
	line("RECOMMENDATIONS")
	line(strings.Repeat("-", 40))
	n := 1
	if flagSummary.CriticalCount > 0 {
		line("%d. URGENT: Review %d critical risk transactions immediately", n, flagSummary.CriticalCount)
		n++
	}
	if flagSummary.HighCount > 0 {
		line("%d. HIGH PRIORITY: Investigate %d high risk transactions", n, flagSummary.HighCount)
		n++
	}
	if riskSummary.Anomalies > 0 {
		line("%d. Review %d anomaly customers for unusual patterns", n, riskSummary.Anomalies)
	}
	line("")

	line(strings.Repeat("=", 60))
	line("END OF REPORT")
	line(strings.Repeat("=", 60))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write text report: %w", err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
