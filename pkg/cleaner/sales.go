// pkg/cleaner/sales.go
package cleaner

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/model"
)

// ErrEmptyReferenceTable signals that a cleaned reference table arrived empty,
// which would make every sale fail its referential check.
var ErrEmptyReferenceTable = errors.New("reference table is empty")

// SalesStats counts the repairs and drops performed while cleaning the sales
// table. Drops are attributed to exactly one counter, checked in the order
// the fields are validated.
type SalesStats struct {
	RowsIn                      int
	RowsOut                     int
	MalformedDropped            int
	DuplicatesRemoved           int
	InvalidQuantityOrPriceDrops int
	RefIntegrityDropsProduct    int
	RefIntegrityDropsEmployee   int
	DatesImputedByEmployee      int
	DatesImputedGlobally        int
	DatesDefaulted              int
}

// SalesCleaner normalizes and validates the sales table against the cleaned
// product and employee tables.
type SalesCleaner struct {
	cfg    *config.CleaningConfig
	logger *zap.Logger
}

// NewSalesCleaner creates a new SalesCleaner
func NewSalesCleaner(cfg *config.CleaningConfig, logger *zap.Logger) *SalesCleaner {
	return &SalesCleaner{
		cfg:    cfg,
		logger: logger.Named("sales-cleaner"),
	}
}

// Clean deduplicates, validates, and repairs the raw sales table.
//
// Duplicate ids keep the first occurrence. Rows with unparseable ids, a
// non-positive quantity or unit price, or a product or employee reference
// that does not exist in the cleaned reference tables are dropped. The total
// is always recomputed as quantity times unit price, ignoring whatever the
// source carried. Missing or unparseable dates go through the imputation
// cascade: median date of the same employee's valid sales, then the global
// median date, then the configured fallback; imputed rows are flagged.
func (c *SalesCleaner) Clean(
	raw []model.RawSale,
	products []model.Product,
	employees []model.Employee,
) ([]model.Sale, SalesStats, error) {
	stats := SalesStats{RowsIn: len(raw)}

	if len(raw) == 0 {
		return nil, stats, ErrEmptyTable
	}
	if len(products) == 0 {
		return nil, stats, fmt.Errorf("products: %w", ErrEmptyReferenceTable)
	}
	if len(employees) == 0 {
		return nil, stats, fmt.Errorf("employees: %w", ErrEmptyReferenceTable)
	}

	productIDs := make(map[int]bool, len(products))
	for _, p := range products {
		productIDs[p.ID] = true
	}
	employeeIDs := make(map[int]bool, len(employees))
	for _, e := range employees {
		employeeIDs[e.ID] = true
	}

	type pendingRow struct {
		sale      model.Sale
		date      time.Time
		validDate bool
	}

	// First pass: dedup, coerce, and validate. Date imputation waits for the
	// second pass because the cascade needs every surviving valid date.
	seen := make(map[int]bool, len(raw))
	rows := make([]pendingRow, 0, len(raw))

	for i, r := range raw {
		id, err := toInt(r.ID)
		if err != nil {
			stats.MalformedDropped++
			c.logger.Warn("Dropping sale row with malformed id",
				zap.Int("row", i),
				zap.String("id", r.ID))
			continue
		}

		if seen[id] {
			stats.DuplicatesRemoved++
			c.logger.Debug("Duplicate sale id removed", zap.Int("id", id))
			continue
		}
		seen[id] = true

		productID, perr := toInt(r.ProductID)
		employeeID, eerr := toInt(r.EmployeeID)
		if perr != nil || eerr != nil {
			stats.MalformedDropped++
			c.logger.Warn("Dropping sale row with malformed reference",
				zap.Int("id", id),
				zap.String("productId", r.ProductID),
				zap.String("employeeId", r.EmployeeID))
			continue
		}

		quantity, qerr := toInt(r.Quantity)
		unitPrice, uerr := toDecimal(r.UnitPrice)
		if qerr != nil || uerr != nil || quantity <= 0 || !unitPrice.IsPositive() {
			stats.InvalidQuantityOrPriceDrops++
			c.logger.Debug("Dropping sale row with invalid quantity or unit price",
				zap.Int("id", id),
				zap.String("quantity", r.Quantity),
				zap.String("unitPrice", r.UnitPrice))
			continue
		}

		if !productIDs[productID] {
			stats.RefIntegrityDropsProduct++
			c.logger.Debug("Dropping sale row referencing unknown product",
				zap.Int("id", id),
				zap.Int("productId", productID))
			continue
		}
		if !employeeIDs[employeeID] {
			stats.RefIntegrityDropsEmployee++
			c.logger.Debug("Dropping sale row referencing unknown employee",
				zap.Int("id", id),
				zap.Int("employeeId", employeeID))
			continue
		}

		p := pendingRow{
			sale: model.Sale{
				ID:         id,
				ProductID:  productID,
				EmployeeID: employeeID,
				Quantity:   quantity,
				UnitPrice:  unitPrice,
				TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			},
		}

		if date, err := toDate(r.Date); err == nil {
			p.date = date
			p.validDate = true
		}

		rows = append(rows, p)
	}

	// Date context for the cascade: only originally valid dates on surviving
	// rows participate, so imputed values never feed later imputations.
	datesByEmployee := make(map[int][]time.Time)
	var datesAll []time.Time
	for _, p := range rows {
		if p.validDate {
			datesByEmployee[p.sale.EmployeeID] = append(datesByEmployee[p.sale.EmployeeID], p.date)
			datesAll = append(datesAll, p.date)
		}
	}

	cascade := []strategy[int, time.Time]{
		{name: strategyMedianByEmployee, apply: func(employeeID int) (time.Time, bool) {
			dates := datesByEmployee[employeeID]
			if len(dates) == 0 {
				return time.Time{}, false
			}
			return medianTime(dates), true
		}},
		{name: strategyMedianGlobal, apply: func(int) (time.Time, bool) {
			if len(datesAll) == 0 {
				return time.Time{}, false
			}
			return medianTime(datesAll), true
		}},
		{name: strategyFallbackDate, apply: func(int) (time.Time, bool) {
			return c.cfg.FallbackDate, true
		}},
	}

	cleaned := make([]model.Sale, 0, len(rows))
	for _, p := range rows {
		sale := p.sale

		if p.validDate {
			sale.Date = p.date
		} else {
			date, tier, _ := runCascade(cascade, sale.EmployeeID)
			sale.Date = date
			sale.DateImputed = true

			switch tier {
			case strategyMedianByEmployee:
				stats.DatesImputedByEmployee++
			case strategyMedianGlobal:
				stats.DatesImputedGlobally++
			case strategyFallbackDate:
				stats.DatesDefaulted++
			}

			c.logger.Debug("Imputed sale date",
				zap.Int("id", sale.ID),
				zap.String("date", date.Format(model.DateLayout)),
				zap.String("strategy", tier))
		}

		cleaned = append(cleaned, sale)
	}

	stats.RowsOut = len(cleaned)

	c.logger.Info("Sales table cleaned",
		zap.Int("rowsIn", stats.RowsIn),
		zap.Int("rowsOut", stats.RowsOut),
		zap.Int("duplicatesRemoved", stats.DuplicatesRemoved),
		zap.Int("invalidQuantityOrPriceDrops", stats.InvalidQuantityOrPriceDrops),
		zap.Int("refIntegrityDropsProduct", stats.RefIntegrityDropsProduct),
		zap.Int("refIntegrityDropsEmployee", stats.RefIntegrityDropsEmployee),
		zap.Int("datesImputed", stats.DatesImputedByEmployee+stats.DatesImputedGlobally+stats.DatesDefaulted))

	return cleaned, stats, nil
}
