// pkg/cleaner/product.go
package cleaner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/model"
)

// ProductStats counts the repairs and drops performed while cleaning the
// product table.
type ProductStats struct {
	RowsIn              int
	RowsOut             int
	MalformedDropped    int
	DuplicatesRemoved   int
	InvalidPriceDropped int
	NamesDefaulted      int
	CategoriesInferred  int
}

// ProductCleaner normalizes and validates the product table. It has no
// dependency on the other cleaners.
type ProductCleaner struct {
	cfg    *config.CleaningConfig
	logger *zap.Logger
}

// NewProductCleaner creates a new ProductCleaner
func NewProductCleaner(cfg *config.CleaningConfig, logger *zap.Logger) *ProductCleaner {
	return &ProductCleaner{
		cfg:    cfg,
		logger: logger.Named("product-cleaner"),
	}
}

// Clean deduplicates, repairs, and validates the raw product table.
//
// Duplicate ids keep the first occurrence with a valid price; every extra
// occurrence of an id counts as a duplicate and every row with a non-numeric
// or non-positive price counts as an invalid-price drop. Prices are never
// imputed. Blank names default to "Produto {id}" and blank categories are
// inferred from name tokens via the configured keyword table.
func (c *ProductCleaner) Clean(raw []model.RawProduct) ([]model.Product, ProductStats, error) {
	stats := ProductStats{RowsIn: len(raw)}

	if len(raw) == 0 {
		return nil, stats, ErrEmptyTable
	}

	occurrences := make(map[int]int, len(raw))
	survived := make(map[int]bool, len(raw))
	cleaned := make([]model.Product, 0, len(raw))

	for i, row := range raw {
		id, err := toInt(row.ID)
		if err != nil {
			stats.MalformedDropped++
			c.logger.Warn("Dropping product row with malformed id",
				zap.Int("row", i),
				zap.String("id", row.ID))
			continue
		}

		occurrences[id]++
		if occurrences[id] > 1 {
			stats.DuplicatesRemoved++
			c.logger.Debug("Duplicate product id",
				zap.Int("id", id),
				zap.Int("occurrence", occurrences[id]))
		}

		price, err := toDecimal(row.Price)
		if err != nil || !price.IsPositive() {
			stats.InvalidPriceDropped++
			c.logger.Debug("Dropping product row with invalid price",
				zap.Int("id", id),
				zap.String("price", row.Price))
			continue
		}

		// Keep the first occurrence that carried a valid price
		if survived[id] {
			continue
		}
		survived[id] = true

		product := model.Product{
			ID:       id,
			Name:     strings.TrimSpace(row.Name),
			Price:    price,
			Category: strings.TrimSpace(row.Category),
		}

		if product.Name == "" {
			product.Name = fmt.Sprintf("Produto %d", id)
			stats.NamesDefaulted++
		}

		if product.Category == "" {
			product.Category = c.inferCategory(product.Name)
			stats.CategoriesInferred++
		}

		cleaned = append(cleaned, product)
	}

	stats.RowsOut = len(cleaned)

	c.logger.Info("Product table cleaned",
		zap.Int("rowsIn", stats.RowsIn),
		zap.Int("rowsOut", stats.RowsOut),
		zap.Int("duplicatesRemoved", stats.DuplicatesRemoved),
		zap.Int("invalidPriceDropped", stats.InvalidPriceDropped),
		zap.Int("namesDefaulted", stats.NamesDefaulted),
		zap.Int("categoriesInferred", stats.CategoriesInferred))

	return cleaned, stats, nil
}

// inferCategory matches lowercase name tokens against the configured keyword
// table. Names with no matching token get the default category.
func (c *ProductCleaner) inferCategory(name string) string {
	for _, token := range strings.Fields(strings.ToLower(name)) {
		if category, ok := c.cfg.CategoryKeywords[token]; ok {
			return category
		}
	}
	return c.cfg.DefaultCategory
}
