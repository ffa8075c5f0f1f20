package usecase

import (
	"context"
	"time"

	"RiskScan/internal/domain/models"
	"RiskScan/internal/repository"
	"RiskScan/internal/services/cleaning"
	"RiskScan/internal/services/features"
	"RiskScan/internal/services/flagging"
	"RiskScan/internal/services/scoring"
	applogger "RiskScan/pkg/logger"
	"RiskScan/pkg/metrics"
)

// ResultStore persists run results; wired only when persistence is enabled.
type ResultStore interface {
	SaveCustomerRisks(ctx context.Context, runAt time.Time, customers []models.CustomerRisk) error
	SaveFlaggedTransactions(ctx context.Context, runAt time.Time, rows []models.FlaggedTransaction) error
}

// Result is one consistent snapshot of a pipeline run. Stage outputs are
// never mutated after the run completes.
type Result struct {
	RunAt         time.Time
	CleaningStats cleaning.Stats
	Features      []models.FeatureRow
	Customers     []models.CustomerRisk
	Flagged       []models.FlaggedTransaction
	RiskSummary   models.RiskSummary
	FlagSummary   models.FlagSummary
}

// Pipeline runs the batch stages in order: load, clean, features, scoring,
// flagging. A stage failure stops the run; stage ordering lives here, not in
// the stage components, which stay pure functions of their input.
type Pipeline struct {
	loader  *repository.CSVLoader
	cleaner *cleaning.Cleaner
	engine  *features.Engine
	scorer  *scoring.Scorer
	flagger *flagging.Flagger
	store   ResultStore
	rec     *metrics.Recorder
	log     *applogger.Logger
}

func NewPipeline(
	loader *repository.CSVLoader,
	cleaner *cleaning.Cleaner,
	engine *features.Engine,
	scorer *scoring.Scorer,
	flagger *flagging.Flagger,
	log *applogger.Logger,
) *Pipeline {
	return &Pipeline{
		loader:  loader,
		cleaner: cleaner,
		engine:  engine,
		scorer:  scorer,
		flagger: flagger,
		log:     log,
	}
}

// SetResultStore enables result persistence.
func (p *Pipeline) SetResultStore(store ResultStore) { p.store = store }

// SetMetrics enables metrics recording.
func (p *Pipeline) SetMetrics(rec *metrics.Recorder) { p.rec = rec }

// Run executes the full batch over the dataset at path and returns the run
// snapshot. Persistence failures are logged but do not fail the run; the
// in-memory snapshot is already complete at that point.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	result := &Result{RunAt: time.Now().UTC()}

	raw, err := runStage(p, "load", func() ([]models.TransactionRow, error) {
		return p.loader.Load(path)
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("dataset loaded", applogger.String("path", path), applogger.Int("rows", len(raw)))

	cleaned, err := runStage(p, "clean", func() ([]models.TransactionRow, error) {
		rows, st, err := p.cleaner.Clean(raw)
		result.CleaningStats = st
		return rows, err
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("cleaning complete",
		applogger.Int("missing_handled", result.CleaningStats.MissingHandled),
		applogger.Int("duplicates_removed", result.CleaningStats.DuplicatesRemoved),
		applogger.Int("invalid_zeroed", result.CleaningStats.InvalidZeroed),
		applogger.Int("rows", result.CleaningStats.FinalRecords),
	)

	result.Features, err = runStage(p, "features", func() ([]models.FeatureRow, error) {
		return p.engine.BuildFeatures(cleaned)
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("features built", applogger.Int("rows", len(result.Features)))

	result.Customers, err = runStage(p, "scoring", func() ([]models.CustomerRisk, error) {
		return p.scorer.ComputeRiskScores(result.Features)
	})
	if err != nil {
		return nil, err
	}
	result.RiskSummary = scoring.Summarize(result.Customers)
	p.log.Info("customers scored",
		applogger.Int("customers", result.RiskSummary.TotalCustomers),
		applogger.Int("high", result.RiskSummary.High.Count),
		applogger.Int("critical", result.RiskSummary.Critical.Count),
		applogger.Int("anomalies", result.RiskSummary.Anomalies),
	)

	result.Flagged, err = runStage(p, "flagging", func() ([]models.FlaggedTransaction, error) {
		return p.flagger.FlagTransactions(result.Features, result.Customers)
	})
	if err != nil {
		return nil, err
	}
	result.FlagSummary = p.flagger.Summarize(result.Flagged)
	p.log.Info("transactions flagged",
		applogger.Int("total", result.FlagSummary.TotalTransactions),
		applogger.Int("flagged", result.FlagSummary.FlaggedTransactions),
		applogger.Float64("percentage", result.FlagSummary.FlaggedPercentage),
	)

	if p.rec != nil {
		p.rec.RecordRunTotals(
			result.FlagSummary.FlaggedTransactions,
			result.RiskSummary.Anomalies,
			result.RiskSummary.TotalCustomers,
		)
	}

	p.persist(ctx, result)

	return result, nil
}

// runStage runs one stage, recording duration, row count, and failures.
func runStage[T any](p *Pipeline, stage string, fn func() ([]T, error)) ([]T, error) {
	start := time.Now()
	rows, err := fn()
	if p.rec != nil {
		p.rec.RecordStageDuration(stage, time.Since(start).Seconds())
		if err != nil {
			p.rec.RecordError(stage)
		} else {
			p.rec.RecordRows(stage, len(rows))
		}
	}
	if err != nil {
		p.log.Error("stage failed", applogger.String("stage", stage), applogger.Error(err))
	}
	return rows, err
}

func (p *Pipeline) persist(ctx context.Context, result *Result) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveCustomerRisks(ctx, result.RunAt, result.Customers); err != nil {
		p.log.Error("persist customer risks failed", applogger.Error(err))
		return
	}
	if err := p.store.SaveFlaggedTransactions(ctx, result.RunAt, result.Flagged); err != nil {
		p.log.Error("persist flagged transactions failed", applogger.Error(err))
	}
}
