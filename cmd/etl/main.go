package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/pipeline"
	"github.com/dfarias/comercial-etl/pkg/store"
)

func main() {
	// A missing .env file is fine, the environment may be set externally
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Pipeline run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var pgStore *store.PostgresStore

	if !cfg.SkipDatabase {
		s, err := store.NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer s.Close()

		if err := s.Validate(); err != nil {
			return fmt.Errorf("database validation failed: %w", err)
		}
		pgStore = s
	}

	p, err := pipeline.New(cfg, pgStore, logger)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("Run completed",
		zap.String("runId", result.RunID.String()),
		zap.Int("products", len(result.Tables.Products)),
		zap.Int("employees", len(result.Tables.Employees)),
		zap.Int("sales", len(result.Tables.Sales)),
		zap.Int("warnings", len(result.Quality.Warnings)))

	return nil
}

// buildLogger constructs the process logger from the configured level and
// format ("json" or "console").
func buildLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	return zapCfg.Build()
}
