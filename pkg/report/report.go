// Package report renders the run summary: business aggregates over the
// cleaned tables plus the cleaning quality counters.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/cleaner"
	"github.com/dfarias/comercial-etl/pkg/quality"
)

// Renderer writes the plain-text run report.
type Renderer struct {
	dir    string
	logger *zap.Logger
}

// NewRenderer creates a new Renderer writing into dir
func NewRenderer(dir string, logger *zap.Logger) *Renderer {
	return &Renderer{
		dir:    dir,
		logger: logger.Named("report-renderer"),
	}
}

// Render writes relatorio.txt: sales totals by employee, average ticket by
// product, per-table quality counters, and any warnings raised by the run.
func (r *Renderer) Render(tables *cleaner.Tables, report *quality.Report) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", r.dir, err)
	}

	var b strings.Builder
	b.WriteString("RELATÓRIO DE VENDAS E QUALIDADE DE DADOS\n\n")

	b.WriteString("Vendas por empregado\n")
	b.WriteString(renderSalesByEmployee(tables))
	b.WriteString("\n\nTicket médio por produto\n")
	b.WriteString(renderAverageTicketByProduct(tables))
	b.WriteString("\n\nQualidade da limpeza\n")
	b.WriteString(renderQuality(report))

	if len(report.Warnings) > 0 {
		b.WriteString("\n\nAvisos\n")
		for _, w := range report.Warnings {
			b.WriteString("  - " + w + "\n")
		}
	}

	path := filepath.Join(r.dir, "relatorio.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.logger.Info("Run report written",
		zap.String("path", path),
		zap.Float64("dateImputationRate", report.DateImputationRate),
		zap.Bool("dateAlert", report.DateAlert))

	return nil
}

func renderSalesByEmployee(tables *cleaner.Tables) string {
	names := make(map[int]string, len(tables.Employees))
	for _, e := range tables.Employees {
		names[e.ID] = e.Name
	}

	type row struct {
		id    int
		count int
		total decimal.Decimal
	}
	byEmployee := make(map[int]*row)
	for _, s := range tables.Sales {
		agg, ok := byEmployee[s.EmployeeID]
		if !ok {
			agg = &row{id: s.EmployeeID}
			byEmployee[s.EmployeeID] = agg
		}
		agg.count++
		agg.total = agg.total.Add(s.TotalPrice)
	}

	rows := make([]*row, 0, len(byEmployee))
	for _, agg := range byEmployee {
		rows = append(rows, agg)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].total.Equal(rows[j].total) {
			return rows[i].total.GreaterThan(rows[j].total)
		}
		return rows[i].id < rows[j].id
	})

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Empregado", "Vendas", "Total"})
	for _, agg := range rows {
		t.AppendRow(table.Row{names[agg.id], agg.count, agg.total.StringFixed(2)})
	}
	return t.Render()
}

func renderAverageTicketByProduct(tables *cleaner.Tables) string {
	names := make(map[int]string, len(tables.Products))
	for _, p := range tables.Products {
		names[p.ID] = p.Name
	}

	type row struct {
		id    int
		count int
		total decimal.Decimal
	}
	byProduct := make(map[int]*row)
	for _, s := range tables.Sales {
		agg, ok := byProduct[s.ProductID]
		if !ok {
			agg = &row{id: s.ProductID}
			byProduct[s.ProductID] = agg
		}
		agg.count++
		agg.total = agg.total.Add(s.TotalPrice)
	}

	rows := make([]*row, 0, len(byProduct))
	for _, agg := range byProduct {
		rows = append(rows, agg)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Produto", "Vendas", "Ticket médio"})
	for _, agg := range rows {
		avg := agg.total.DivRound(decimal.NewFromInt(int64(agg.count)), 2)
		t.AppendRow(table.Row{names[agg.id], agg.count, avg.StringFixed(2)})
	}
	return t.Render()
}

func renderQuality(report *quality.Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Tabela", "Contador", "Valor"})

	for _, tq := range []quality.TableQuality{report.Products, report.Employees, report.Sales} {
		t.AppendRow(table.Row{tq.Table, "rows_in", tq.RowsIn})
		t.AppendRow(table.Row{tq.Table, "rows_out", tq.RowsOut})

		keys := make([]string, 0, len(tq.Counts))
		for k := range tq.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AppendRow(table.Row{tq.Table, k, tq.Counts[k]})
		}
		t.AppendSeparator()
	}

	t.AppendFooter(table.Row{"vendas", "date_imputation_rate",
		fmt.Sprintf("%.1f%%", report.DateImputationRate*100)})

	return t.Render()
}
