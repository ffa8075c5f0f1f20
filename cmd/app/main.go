package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RiskScan/internal/handler/api"
	"RiskScan/internal/report"
	"RiskScan/internal/repository"
	"RiskScan/internal/services/cleaning"
	"RiskScan/internal/services/features"
	"RiskScan/internal/services/flagging"
	"RiskScan/internal/services/scoring"
	"RiskScan/internal/usecase"
	pkgch "RiskScan/pkg/clickhouse"
	"RiskScan/pkg/config"
	xhttp "RiskScan/pkg/http"
	applogger "RiskScan/pkg/logger"
	"RiskScan/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	inputPath := flag.String("input", "", "dataset path (overrides config)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *inputPath != "" {
		cfg.Input.Path = *inputPath
	}

	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	l.Info("starting run",
		applogger.String("env", cfg.Environment),
		applogger.String("input", cfg.Input.Path),
		applogger.Float64("risk_threshold", cfg.Flagging.RiskThreshold),
		applogger.Float64("anomaly_z_threshold", cfg.Scoring.AnomalyZThreshold),
	)

	pipeline := usecase.NewPipeline(
		repository.NewCSVLoader(),
		cleaning.NewCleaner(),
		features.NewEngine(),
		scoring.NewScorer(cfg.Scoring.AnomalyZThreshold),
		flagging.NewFlagger(cfg.Flagging.RiskThreshold),
		l,
	)

	if cfg.Metrics.Enabled {
		pipeline.SetMetrics(metrics.New())
	}

	ctx := context.Background()

	var chClient *pkgch.Client
	if cfg.ClickHouse.Enabled {
		chClient, err = pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		)
		if err != nil {
			l.Error("clickhouse connect failed", applogger.Error(err))
			os.Exit(1)
		}
		defer chClient.Close()
		if err := chClient.InitSchema(ctx, repository.Schema(cfg.ClickHouse.Database)); err != nil {
			l.Error("clickhouse schema init failed", applogger.Error(err))
			os.Exit(1)
		}
		store := repository.NewCHResultStore(chClient)
		store.SetLogger(l)
		pipeline.SetResultStore(store)
		l.Info("clickhouse connected", applogger.String("database", cfg.ClickHouse.Database))
	}

	result, err := pipeline.Run(ctx, cfg.Input.Path)
	if err != nil {
		l.Error("pipeline run failed", applogger.Error(err))
		os.Exit(1)
	}

	gen, err := report.NewGenerator(cfg.Output.Dir)
	if err != nil {
		l.Error("report setup failed", applogger.Error(err))
		os.Exit(1)
	}
	flaggedSubset := flagging.Flagged(result.Flagged, cfg.Output.MaxFlaggedRows)
	paths, err := gen.Generate(flaggedSubset, result.Customers, result.FlagSummary, result.RiskSummary)
	if err != nil {
		l.Error("report generation failed", applogger.Error(err))
		os.Exit(1)
	}
	l.Info("reports written",
		applogger.String("flagged_csv", paths.FlaggedCSV),
		applogger.String("risk_csv", paths.RiskCSV),
		applogger.String("text_report", paths.TextReport),
	)

	if !cfg.Server.Enabled {
		return
	}

	handler := api.NewResultsEchoHandler(l, result)
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	server := xhttp.NewServer(handler, opts...)
	if err := server.Start(); err != nil {
		l.Error("http server start failed", applogger.Error(err))
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	if err := server.Shutdown(ctx); err != nil {
		l.Error("http server shutdown error", applogger.Error(err))
	}
}
