// Package export writes the cleaned tables as columnar files for downstream
// analytical tooling.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/cleaner"
	"github.com/dfarias/comercial-etl/pkg/model"
)

// Flat row shapes for the columnar files. Monetary values are written as
// strings so the exact decimal representation survives the round trip.
type productRow struct {
	ID       int    `parquet:"id_produto"`
	Name     string `parquet:"nome"`
	Price    string `parquet:"preco"`
	Category string `parquet:"categoria"`
}

type employeeRow struct {
	ID   int    `parquet:"id_empregado"`
	Name string `parquet:"nome"`
	Age  int    `parquet:"idade"`
	Role string `parquet:"cargo"`
}

type saleRow struct {
	ID          int    `parquet:"id_venda"`
	ProductID   int    `parquet:"id_produto"`
	EmployeeID  int    `parquet:"id_empregado"`
	Quantity    int    `parquet:"quantidade"`
	UnitPrice   string `parquet:"valor_unitario"`
	TotalPrice  string `parquet:"valor_total"`
	Date        string `parquet:"data"`
	DateImputed bool   `parquet:"data_imputada"`
}

// ParquetExporter writes one parquet file per cleaned table.
type ParquetExporter struct {
	dir    string
	logger *zap.Logger
}

// NewParquetExporter creates a new ParquetExporter writing into dir
func NewParquetExporter(dir string, logger *zap.Logger) *ParquetExporter {
	return &ParquetExporter{
		dir:    dir,
		logger: logger.Named("parquet-exporter"),
	}
}

// Export writes produtos.parquet, empregados.parquet, and vendas.parquet.
func (e *ParquetExporter) Export(tables *cleaner.Tables) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", e.dir, err)
	}

	products := make([]productRow, 0, len(tables.Products))
	for _, p := range tables.Products {
		products = append(products, productRow{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.String(),
			Category: p.Category,
		})
	}
	if err := writeParquet(filepath.Join(e.dir, "produtos.parquet"), products); err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}

	employees := make([]employeeRow, 0, len(tables.Employees))
	for _, emp := range tables.Employees {
		employees = append(employees, employeeRow{
			ID:   emp.ID,
			Name: emp.Name,
			Age:  emp.Age,
			Role: emp.Role,
		})
	}
	if err := writeParquet(filepath.Join(e.dir, "empregados.parquet"), employees); err != nil {
		return fmt.Errorf("failed to export employees: %w", err)
	}

	sales := make([]saleRow, 0, len(tables.Sales))
	for _, v := range tables.Sales {
		sales = append(sales, saleRow{
			ID:          v.ID,
			ProductID:   v.ProductID,
			EmployeeID:  v.EmployeeID,
			Quantity:    v.Quantity,
			UnitPrice:   v.UnitPrice.String(),
			TotalPrice:  v.TotalPrice.String(),
			Date:        v.Date.Format(model.DateLayout),
			DateImputed: v.DateImputed,
		})
	}
	if err := writeParquet(filepath.Join(e.dir, "vendas.parquet"), sales); err != nil {
		return fmt.Errorf("failed to export sales: %w", err)
	}

	e.logger.Info("Cleaned tables exported",
		zap.String("dir", e.dir),
		zap.Int("products", len(products)),
		zap.Int("employees", len(employees)),
		zap.Int("sales", len(sales)))

	return nil
}

func writeParquet[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	return f.Close()
}
