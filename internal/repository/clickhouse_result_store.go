package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"RiskScan/internal/domain/models"
	pkgch "RiskScan/pkg/clickhouse"
	applogger "RiskScan/pkg/logger"
)

// CHResultStore persists run results to ClickHouse. The pipeline runs fully
// without it; it is wired only when persistence is enabled in config.
type CHResultStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHResultStore(ch *pkgch.Client) *CHResultStore {
	return &CHResultStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHResultStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns idempotent DDL for the result tables.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.customer_risk (
            run_at        DateTime,
            name_orig     String,
            composite_z   Float64,
            risk_score    Float64,
            risk_band     LowCardinality(String),
            is_anomaly    UInt8
        ) ENGINE = MergeTree()
        ORDER BY (run_at, name_orig)
    `, database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.flagged_transactions (
            run_at      DateTime,
            name_orig   String,
            name_dest   String,
            txn_type    LowCardinality(String),
            step        Int32,
            amount      Float64,
            risk_score  Float64,
            risk_band   LowCardinality(String),
            is_anomaly  UInt8,
            is_flagged  UInt8
        ) ENGINE = MergeTree()
        ORDER BY (run_at, name_orig, step)
    `, database),
	}
}

// SaveCustomerRisks inserts one row per scored customer.
func (s *CHResultStore) SaveCustomerRisks(ctx context.Context, runAt time.Time, customers []models.CustomerRisk) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin customer_risk batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO customer_risk (run_at, name_orig, composite_z, risk_score, risk_band, is_anomaly) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare customer_risk insert: %w", err)
	}
	defer stmt.Close()

	for i := range customers {
		c := &customers[i]
		if _, err := stmt.ExecContext(ctx, runAt, c.NameOrig, c.CompositeZScore, c.RiskScore, string(c.RiskBand), boolToUint8(c.IsAnomaly)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert customer_risk row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit customer_risk batch: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse customer_risk saved",
			applogger.Int("rows", len(customers)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// SaveFlaggedTransactions inserts the flagged transaction table.
func (s *CHResultStore) SaveFlaggedTransactions(ctx context.Context, runAt time.Time, rows []models.FlaggedTransaction) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flagged_transactions batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO flagged_transactions (run_at, name_orig, name_dest, txn_type, step, amount, risk_score, risk_band, is_anomaly, is_flagged) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare flagged_transactions insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		r := &rows[i]
		if _, err := stmt.ExecContext(ctx, runAt, r.NameOrig, r.NameDest, r.Type, int32(r.Step), r.Amount,
			r.RiskScore, string(r.RiskBand), boolToUint8(r.IsAnomaly), boolToUint8(r.IsFlagged)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert flagged_transactions row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flagged_transactions batch: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse flagged_transactions saved",
			applogger.Int("rows", len(rows)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
