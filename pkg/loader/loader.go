// Package loader reads the semicolon-delimited UTF-8 source files into raw
// row structures. Every field stays a string here; type coercion and repair
// belong to the cleaning engine.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/model"
)

// Loader reads the three source tables from disk.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new Loader
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		logger: logger.Named("loader"),
	}
}

// table is a parsed source file: a header-name-to-index map plus the data
// rows, all still raw strings.
type table struct {
	columns map[string]int
	rows    [][]string
}

func (t *table) field(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// readTable parses a semicolon-delimited file and verifies the required
// columns are present. A file without a single data row is a hard error:
// cleaning an empty table would only mask a broken extraction upstream.
func (l *Loader) readTable(path string, required []string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	// Source rows occasionally miss trailing fields
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", path)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[name] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%s is missing required column %q", path, name)
		}
	}

	l.logger.Debug("Loaded source file",
		zap.String("path", path),
		zap.Int("rows", len(records)-1))

	return &table{columns: columns, rows: records[1:]}, nil
}

// LoadProducts reads the raw product table
func (l *Loader) LoadProducts(path string) ([]model.RawProduct, error) {
	t, err := l.readTable(path, []string{"id_produto", "nome", "preco", "categoria"})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]model.RawProduct, 0, len(t.rows))
	for _, row := range t.rows {
		products = append(products, model.RawProduct{
			ID:       t.field(row, "id_produto"),
			Name:     t.field(row, "nome"),
			Price:    t.field(row, "preco"),
			Category: t.field(row, "categoria"),
		})
	}
	return products, nil
}

// LoadEmployees reads the raw employee table
func (l *Loader) LoadEmployees(path string) ([]model.RawEmployee, error) {
	t, err := l.readTable(path, []string{"id_empregado", "nome", "idade", "cargo"})
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	employees := make([]model.RawEmployee, 0, len(t.rows))
	for _, row := range t.rows {
		employees = append(employees, model.RawEmployee{
			ID:   t.field(row, "id_empregado"),
			Name: t.field(row, "nome"),
			Age:  t.field(row, "idade"),
			Role: t.field(row, "cargo"),
		})
	}
	return employees, nil
}

// LoadSales reads the raw sales table
func (l *Loader) LoadSales(path string) ([]model.RawSale, error) {
	t, err := l.readTable(path, []string{
		"id_venda", "id_produto", "id_empregado",
		"quantidade", "valor_unitario", "valor_total", "data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	sales := make([]model.RawSale, 0, len(t.rows))
	for _, row := range t.rows {
		sales = append(sales, model.RawSale{
			ID:         t.field(row, "id_venda"),
			ProductID:  t.field(row, "id_produto"),
			EmployeeID: t.field(row, "id_empregado"),
			Quantity:   t.field(row, "quantidade"),
			UnitPrice:  t.field(row, "valor_unitario"),
			TotalPrice: t.field(row, "valor_total"),
			Date:       t.field(row, "data"),
		})
	}
	return sales, nil
}
