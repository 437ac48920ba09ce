// Package pipeline orchestrates the full run: load, clean, summarize,
// export, report, and persist.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dfarias/comercial-etl/pkg/cleaner"
	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/export"
	"github.com/dfarias/comercial-etl/pkg/loader"
	"github.com/dfarias/comercial-etl/pkg/model"
	"github.com/dfarias/comercial-etl/pkg/quality"
	"github.com/dfarias/comercial-etl/pkg/report"
	"github.com/dfarias/comercial-etl/pkg/store"
)

// Result is everything a completed run produced, returned so callers and
// tests can inspect the outcome without re-reading the outputs.
type Result struct {
	RunID   uuid.UUID
	Tables  *cleaner.Tables
	Stats   *cleaner.Stats
	Quality *quality.Report
}

// Pipeline wires the loader, the cleaning engine, and the output
// collaborators into a single run.
type Pipeline struct {
	cfg      *config.Config
	loader   *loader.Loader
	engine   *cleaner.Engine
	reporter *quality.Reporter
	exporter *export.ParquetExporter
	renderer *report.Renderer
	store    *store.PostgresStore
	logger   *zap.Logger
}

// New creates a new Pipeline. store may be nil, in which case the run skips
// the database load and only produces files.
func New(cfg *config.Config, pgStore *store.PostgresStore, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	engine, err := cleaner.NewEngine(cfg.Cleaning, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build cleaning engine: %w", err)
	}

	return &Pipeline{
		cfg:      cfg,
		loader:   loader.NewLoader(logger),
		engine:   engine,
		reporter: quality.NewReporter(cfg.Cleaning.DateImputationAlertThreshold),
		exporter: export.NewParquetExporter(cfg.ParquetDir, logger),
		renderer: report.NewRenderer(cfg.ReportDir, logger),
		store:    pgStore,
		logger:   logger.Named("pipeline"),
	}, nil
}

// Run executes the full pipeline once.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New()
	metrics := NewRunMetrics(p.logger)

	p.logger.Info("Starting pipeline run", zap.String("runId", runID.String()))

	metrics.StartStage("load")
	rawProducts, rawEmployees, rawSales, err := p.load(ctx)
	if err != nil {
		metrics.FailStage("load", err)
		return nil, fmt.Errorf("load stage failed: %w", err)
	}
	rowsIn := len(rawProducts) + len(rawEmployees) + len(rawSales)
	metrics.EndStage("load", rowsIn, rowsIn)

	metrics.StartStage("clean")
	tables, stats, err := p.engine.Run(rawProducts, rawEmployees, rawSales)
	if err != nil {
		metrics.FailStage("clean", err)
		return nil, fmt.Errorf("clean stage failed: %w", err)
	}
	rowsOut := len(tables.Products) + len(tables.Employees) + len(tables.Sales)
	metrics.EndStage("clean", rowsIn, rowsOut)

	qualityReport := p.reporter.Summarize(stats)
	for _, warning := range qualityReport.Warnings {
		p.logger.Warn("Quality warning", zap.String("warning", warning))
	}

	metrics.StartStage("export")
	if err := p.exporter.Export(tables); err != nil {
		metrics.FailStage("export", err)
		return nil, fmt.Errorf("export stage failed: %w", err)
	}
	metrics.EndStage("export", rowsOut, rowsOut)

	metrics.StartStage("report")
	if err := p.renderer.Render(tables, qualityReport); err != nil {
		metrics.FailStage("report", err)
		return nil, fmt.Errorf("report stage failed: %w", err)
	}
	metrics.EndStage("report", rowsOut, rowsOut)

	if p.store != nil {
		metrics.StartStage("persist")
		if err := p.persist(ctx, runID, tables, qualityReport); err != nil {
			metrics.FailStage("persist", err)
			return nil, fmt.Errorf("persist stage failed: %w", err)
		}
		metrics.EndStage("persist", rowsOut, rowsOut)
	} else {
		p.logger.Info("No database configured, skipping persist stage")
	}

	metrics.Complete()
	p.logger.Info("Pipeline run finished",
		zap.String("runId", runID.String()),
		zap.String("stages", metrics.Summary()),
		zap.Float64("dateImputationRate", qualityReport.DateImputationRate))

	return &Result{
		RunID:   runID,
		Tables:  tables,
		Stats:   stats,
		Quality: qualityReport,
	}, nil
}

// load reads the three source files concurrently.
func (p *Pipeline) load(ctx context.Context) ([]model.RawProduct, []model.RawEmployee, []model.RawSale, error) {
	var (
		rawProducts  []model.RawProduct
		rawEmployees []model.RawEmployee
		rawSales     []model.RawSale
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		rawProducts, err = p.loader.LoadProducts(p.cfg.ProductsCSV)
		return err
	})
	g.Go(func() error {
		var err error
		rawEmployees, err = p.loader.LoadEmployees(p.cfg.EmployeesCSV)
		return err
	})
	g.Go(func() error {
		var err error
		rawSales, err = p.loader.LoadSales(p.cfg.SalesCSV)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	return rawProducts, rawEmployees, rawSales, nil
}

// persist rebuilds the destination schema, loads the cleaned tables, and
// appends the audit rows for this run.
func (p *Pipeline) persist(ctx context.Context, runID uuid.UUID, tables *cleaner.Tables, q *quality.Report) error {
	if err := p.store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := p.store.SaveTables(ctx, tables); err != nil {
		return err
	}
	return p.store.RecordAudit(ctx, runID, q)
}
