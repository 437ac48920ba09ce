// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/model"
)

// ErrEmptyTable signals that an input table has no rows at all. Downstream
// referential checks would pass vacuously against an empty table, so this is
// surfaced as a hard failure instead of producing an empty cleaned output.
var ErrEmptyTable = errors.New("input table is empty")

// Tables holds the three cleaned tables produced by a single engine run.
// They are never mutated after Run returns.
type Tables struct {
	Products  []model.Product
	Employees []model.Employee
	Sales     []model.Sale
}

// Stats holds the per-table cleaning counters produced by a single engine run.
type Stats struct {
	Products  ProductStats
	Employees EmployeeStats
	Sales     SalesStats
}

// Engine runs the full transform and validation pass over the three raw
// tables. Products and employees have no data dependency on each other and
// are cleaned in parallel; sales waits for both since it validates references
// against their cleaned output.
type Engine struct {
	products  *ProductCleaner
	employees *EmployeeCleaner
	sales     *SalesCleaner
	logger    *zap.Logger
}

// NewEngine creates a new cleaning engine
func NewEngine(cfg *config.CleaningConfig, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("cleaning configuration cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cleaning configuration: %w", err)
	}

	return &Engine{
		products:  NewProductCleaner(cfg, logger),
		employees: NewEmployeeCleaner(cfg, logger),
		sales:     NewSalesCleaner(cfg, logger),
		logger:    logger,
	}, nil
}

// Run cleans all three tables and returns the cleaned tables plus per-table
// stats. Inputs are never mutated. Row-level problems are recovered locally
// (row dropped or repaired); only structurally fatal conditions, such as an
// entirely empty input table, abort the run.
func (e *Engine) Run(
	rawProducts []model.RawProduct,
	rawEmployees []model.RawEmployee,
	rawSales []model.RawSale,
) (*Tables, *Stats, error) {
	tables := &Tables{}
	stats := &Stats{}

	var g errgroup.Group

	g.Go(func() error {
		cleaned, pStats, err := e.products.Clean(rawProducts)
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		tables.Products = cleaned
		stats.Products = pStats
		return nil
	})

	g.Go(func() error {
		cleaned, eStats, err := e.employees.Clean(rawEmployees)
		if err != nil {
			return fmt.Errorf("employees: %w", err)
		}
		tables.Employees = cleaned
		stats.Employees = eStats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	cleanedSales, sStats, err := e.sales.Clean(rawSales, tables.Products, tables.Employees)
	if err != nil {
		return nil, nil, fmt.Errorf("sales: %w", err)
	}
	tables.Sales = cleanedSales
	stats.Sales = sStats

	e.logger.Info("Cleaning engine run completed",
		zap.Int("products", len(tables.Products)),
		zap.Int("employees", len(tables.Employees)),
		zap.Int("sales", len(tables.Sales)))

	return tables, stats, nil
}
