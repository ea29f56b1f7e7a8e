package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mt4-analyzer/internal/analysis"
	"mt4-analyzer/internal/analysis/analysisobs"
	"mt4-analyzer/internal/fetch"
	"mt4-analyzer/internal/interfaces"
	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/metrics"
	"mt4-analyzer/internal/parser"
	"mt4-analyzer/internal/rating"
	"mt4-analyzer/internal/report"
	"mt4-analyzer/internal/risk"
	"mt4-analyzer/internal/rmultiple"
	"mt4-analyzer/internal/server"
	"mt4-analyzer/internal/store"
	"mt4-analyzer/internal/trace"
)

// application holds the wired components shared by the CLI and server
// modes.
type application struct {
	cfg      *store.Config
	analyzer interfaces.Analyzer
	fetcher  interfaces.Fetcher
	planner  *risk.Planner
	reports  *report.Store
	server   *server.Server
}

// initializeSystem initializes environment, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown(ctx)
}

// buildApp loads the configuration and wires the full pipeline with
// observability.
func buildApp(ctx context.Context) (*application, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}

	svc := analysis.NewService(
		parser.New(cfg.Parser.MinTradeColumns),
		metrics.NewEngine(),
		rmultiple.NewCalculator(),
		rating.NewRater(cfg),
	)
	analyzer := analysisobs.Wrap(svc)

	fetcher := fetch.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second)
	planner := risk.NewPlanner(cfg)
	reports := report.NewStore(cfg.Reports.Dir, cfg.Reports.RetentionDays)

	app := &application{
		cfg:      cfg,
		analyzer: analyzer,
		fetcher:  fetcher,
		planner:  planner,
		reports:  reports,
	}
	app.server = server.New(cfg, analyzer, fetcher, planner, reports)
	return app, nil
}

// compressOldReports gzips reports past the retention window on startup
func compressOldReports(ctx context.Context, app *application) {
	if err := app.reports.CompressOlder(); err != nil {
		logger.Warn(ctx, "Failed to compress old reports", "error", err)
	}
}
