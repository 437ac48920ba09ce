// pkg/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/config"
)

// PostgresStore wraps a pooled PostgreSQL connection used to persist the
// cleaned tables and the cleaning audit trail.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresStore creates and initializes a new PostgreSQL store
func NewPostgresStore(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	logger = logger.Named("postgres-store")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	store := &PostgresStore{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return store, nil
}

// DB returns the underlying database connection
func (s *PostgresStore) DB() *sqlx.DB {
	return s.db
}

// Validate verifies the PostgreSQL connection and required permissions
func (s *PostgresStore) Validate() error {
	var version string
	err := s.db.QueryRow("SELECT version()").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	s.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	// Check permissions by creating a temp table
	_, err = s.db.Exec(`
		DO $$
		BEGIN
			CREATE TEMP TABLE _permission_check (id serial, test text);
			INSERT INTO _permission_check (test) VALUES ('test');
			DROP TABLE _permission_check;
		EXCEPTION WHEN OTHERS THEN
			RAISE EXCEPTION 'Permission check failed: %', SQLERRM;
		END $$;
	`)
	if err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}

	s.logger.Info("PostgreSQL connection validated",
		zap.String("database", s.cfg.Database),
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port))

	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(s.logger, s.cfg.Database, s.db.DB)
	return s.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (s *PostgresStore) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.db.ExecContext(queryCtx, query, args...)
}

// QueryWithTimeout executes a query with a timeout
func (s *PostgresStore) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sqlx.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.db.QueryxContext(queryCtx, query, args...)
}
