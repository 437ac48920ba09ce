// Package quality aggregates the per-table cleaning counters into a single
// report consumed by the rendering and persistence collaborators.
package quality

import (
	"fmt"

	"github.com/dfarias/comercial-etl/pkg/cleaner"
)

// TableQuality summarizes what happened to one table during cleaning. Counts
// is keyed by the counter names used in audit output.
type TableQuality struct {
	Table   string         `json:"table"`
	RowsIn  int            `json:"rows_in"`
	RowsOut int            `json:"rows_out"`
	Counts  map[string]int `json:"counts"`
}

// Report is the aggregated quality view of a full engine run. It is a pure
// projection of the cleaning stats and never touches the cleaned tables.
type Report struct {
	Products           TableQuality `json:"products"`
	Employees          TableQuality `json:"employees"`
	Sales              TableQuality `json:"sales"`
	DateImputationRate float64      `json:"date_imputation_rate"`
	DateAlert          bool         `json:"date_alert"`
	Warnings           []string     `json:"warnings"`
}

// Reporter builds quality reports from cleaning stats.
type Reporter struct {
	alertThreshold float64
}

// NewReporter creates a new Reporter. alertThreshold is the fraction of
// sales with imputed dates above which the report raises an alert.
func NewReporter(alertThreshold float64) *Reporter {
	return &Reporter{alertThreshold: alertThreshold}
}

// Summarize aggregates the three stat records into a Report. Every run
// produces a report; zero survivors in any table becomes an explicit warning
// rather than a silent empty section.
func (r *Reporter) Summarize(stats *cleaner.Stats) *Report {
	report := &Report{
		Products: TableQuality{
			Table:   "produtos",
			RowsIn:  stats.Products.RowsIn,
			RowsOut: stats.Products.RowsOut,
			Counts: map[string]int{
				"malformed_dropped":     stats.Products.MalformedDropped,
				"duplicates_removed":    stats.Products.DuplicatesRemoved,
				"invalid_price_dropped": stats.Products.InvalidPriceDropped,
				"names_defaulted":       stats.Products.NamesDefaulted,
				"categories_inferred":   stats.Products.CategoriesInferred,
			},
		},
		Employees: TableQuality{
			Table:   "empregados",
			RowsIn:  stats.Employees.RowsIn,
			RowsOut: stats.Employees.RowsOut,
			Counts: map[string]int{
				"duplicates_removed":    stats.Employees.DuplicatesRemoved,
				"ids_synthesized":       stats.Employees.IDsSynthesized,
				"names_defaulted":       stats.Employees.NamesDefaulted,
				"roles_defaulted":       stats.Employees.RolesDefaulted,
				"ages_imputed_by_role":  stats.Employees.AgesImputedByRole,
				"ages_imputed_globally": stats.Employees.AgesImputedGlobally,
				"ages_defaulted":        stats.Employees.AgesDefaulted,
			},
		},
		Sales: TableQuality{
			Table:   "vendas",
			RowsIn:  stats.Sales.RowsIn,
			RowsOut: stats.Sales.RowsOut,
			Counts: map[string]int{
				"malformed_dropped":               stats.Sales.MalformedDropped,
				"duplicates_removed":              stats.Sales.DuplicatesRemoved,
				"invalid_quantity_or_price_drops": stats.Sales.InvalidQuantityOrPriceDrops,
				"ref_integrity_drops_product":     stats.Sales.RefIntegrityDropsProduct,
				"ref_integrity_drops_employee":    stats.Sales.RefIntegrityDropsEmployee,
				"dates_imputed_by_employee":       stats.Sales.DatesImputedByEmployee,
				"dates_imputed_globally":          stats.Sales.DatesImputedGlobally,
				"dates_defaulted":                 stats.Sales.DatesDefaulted,
			},
		},
	}

	if stats.Sales.RowsOut > 0 {
		imputed := stats.Sales.DatesImputedByEmployee +
			stats.Sales.DatesImputedGlobally +
			stats.Sales.DatesDefaulted
		report.DateImputationRate = float64(imputed) / float64(stats.Sales.RowsOut)
	}

	if report.DateImputationRate > r.alertThreshold {
		report.DateAlert = true
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"date imputation rate %.1f%% exceeds alert threshold %.1f%%",
			report.DateImputationRate*100, r.alertThreshold*100))
	}

	for _, t := range []TableQuality{report.Products, report.Employees, report.Sales} {
		if t.RowsOut == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"table %s has zero surviving rows", t.Table))
		}
	}

	return report
}
