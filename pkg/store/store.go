// pkg/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/cleaner"
	"github.com/dfarias/comercial-etl/pkg/quality"
)

const insertBatchSize = 1000

// Each load rebuilds the three destination tables so a rerun fully replaces
// the previous run's output. The audit table is append-only across runs.
var schemaStatements = []string{
	`DROP TABLE IF EXISTS vendas`,
	`DROP TABLE IF EXISTS produtos`,
	`DROP TABLE IF EXISTS empregados`,
	`CREATE TABLE produtos (
		id_produto INTEGER PRIMARY KEY,
		nome TEXT NOT NULL,
		preco NUMERIC(12,2) NOT NULL CHECK (preco > 0),
		categoria TEXT NOT NULL
	)`,
	`CREATE TABLE empregados (
		id_empregado INTEGER PRIMARY KEY,
		nome TEXT NOT NULL,
		idade INTEGER NOT NULL CHECK (idade BETWEEN 18 AND 70),
		cargo TEXT NOT NULL
	)`,
	`CREATE TABLE vendas (
		id_venda INTEGER PRIMARY KEY,
		id_produto INTEGER NOT NULL REFERENCES produtos (id_produto),
		id_empregado INTEGER NOT NULL REFERENCES empregados (id_empregado),
		quantidade INTEGER NOT NULL CHECK (quantidade > 0),
		valor_unitario NUMERIC(12,2) NOT NULL CHECK (valor_unitario > 0),
		valor_total NUMERIC(14,2) NOT NULL,
		data DATE NOT NULL,
		data_imputada BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS limpeza_execucoes (
		id UUID PRIMARY KEY,
		executada_em TIMESTAMPTZ NOT NULL,
		tabela TEXT NOT NULL,
		linhas_entrada INTEGER NOT NULL,
		linhas_saida INTEGER NOT NULL,
		contadores JSONB NOT NULL
	)`,
}

// EnsureSchema rebuilds the destination tables and makes sure the audit
// table exists.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.ExecWithTimeout(ctx, stmt, 30*time.Second); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	s.logger.Info("Destination schema ready")
	return nil
}

// SaveTables persists the three cleaned tables. Products and employees load
// before sales so the foreign keys resolve.
func (s *PostgresStore) SaveTables(ctx context.Context, tables *cleaner.Tables) error {
	productRows := make([][]interface{}, 0, len(tables.Products))
	for _, p := range tables.Products {
		productRows = append(productRows, []interface{}{p.ID, p.Name, p.Price, p.Category})
	}
	if err := s.batchInsert(ctx, "produtos",
		[]string{"id_produto", "nome", "preco", "categoria"}, productRows); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}

	employeeRows := make([][]interface{}, 0, len(tables.Employees))
	for _, e := range tables.Employees {
		employeeRows = append(employeeRows, []interface{}{e.ID, e.Name, e.Age, e.Role})
	}
	if err := s.batchInsert(ctx, "empregados",
		[]string{"id_empregado", "nome", "idade", "cargo"}, employeeRows); err != nil {
		return fmt.Errorf("failed to save employees: %w", err)
	}

	saleRows := make([][]interface{}, 0, len(tables.Sales))
	for _, v := range tables.Sales {
		saleRows = append(saleRows, []interface{}{
			v.ID, v.ProductID, v.EmployeeID,
			v.Quantity, v.UnitPrice, v.TotalPrice,
			v.Date, v.DateImputed,
		})
	}
	if err := s.batchInsert(ctx, "vendas", []string{
		"id_venda", "id_produto", "id_empregado",
		"quantidade", "valor_unitario", "valor_total",
		"data", "data_imputada",
	}, saleRows); err != nil {
		return fmt.Errorf("failed to save sales: %w", err)
	}

	s.logger.Info("Cleaned tables persisted",
		zap.Int("products", len(tables.Products)),
		zap.Int("employees", len(tables.Employees)),
		zap.Int("sales", len(tables.Sales)))

	return nil
}

// RecordAudit appends one audit row per table for this run.
func (s *PostgresStore) RecordAudit(ctx context.Context, runID uuid.UUID, report *quality.Report) error {
	executedAt := time.Now().UTC()

	for _, t := range []quality.TableQuality{report.Products, report.Employees, report.Sales} {
		counts, err := json.Marshal(t.Counts)
		if err != nil {
			return fmt.Errorf("failed to encode audit counters for %s: %w", t.Table, err)
		}

		_, err = s.ExecWithTimeout(ctx, `
			INSERT INTO limpeza_execucoes (id, executada_em, tabela, linhas_entrada, linhas_saida, contadores)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			30*time.Second,
			uuid.New(), executedAt, t.Table, t.RowsIn, t.RowsOut, counts)
		if err != nil {
			return fmt.Errorf("failed to record audit row for %s: %w", t.Table, err)
		}
	}

	s.logger.Info("Cleaning audit recorded", zap.String("runId", runID.String()))
	return nil
}

// batchInsert performs a bulk insert into a table. Conflicting ids are
// skipped rather than erroring, matching the rebuild-then-load flow.
func (s *PostgresStore) batchInsert(
	ctx context.Context,
	table string,
	columns []string,
	valueRows [][]interface{},
) error {
	if len(valueRows) == 0 {
		return nil
	}

	columnStr := strings.Join(columns, ", ")
	var totalRowsInserted int64

	for i := 0; i < len(valueRows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(valueRows) {
			end = len(valueRows)
		}

		currentBatch := valueRows[i:end]

		placeholders := make([]string, len(currentBatch))
		args := make([]interface{}, 0, len(currentBatch)*len(columns))

		for j, row := range currentBatch {
			rowPlaceholders := make([]string, len(columns))
			for k, val := range row {
				paramIndex := j*len(columns) + k + 1
				rowPlaceholders[k] = fmt.Sprintf("$%d", paramIndex)
				args = append(args, val)
			}
			placeholders[j] = fmt.Sprintf("(%s)", strings.Join(rowPlaceholders, ", "))
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING",
			table, columnStr, strings.Join(placeholders, ", "))

		result, err := s.ExecWithTimeout(ctx, query, 30*time.Second, args...)
		if err != nil {
			return fmt.Errorf("batch insert into %s failed: %w", table, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			s.logger.Warn("Couldn't get rows affected", zap.Error(err))
		} else {
			totalRowsInserted += rowsAffected
		}
	}

	s.logger.Debug("Batch insert completed",
		zap.String("table", table),
		zap.Int64("rowsInserted", totalRowsInserted))

	return nil
}
