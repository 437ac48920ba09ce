package cleaner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/model"
)

func TestProductCleaner_Clean(t *testing.T) {
	c := NewProductCleaner(testCleaningConfig(), zap.NewNop())

	t.Run("empty input is a hard error", func(t *testing.T) {
		_, _, err := c.Clean(nil)
		require.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("duplicate with invalid price keeps the valid occurrence", func(t *testing.T) {
		raw := []model.RawProduct{
			{ID: "1", Name: "Widget", Price: "-5", Category: ""},
			{ID: "1", Name: "Widget", Price: "10", Category: ""},
			{ID: "2", Name: "", Price: "20", Category: "Gadget X"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 2)

		assert.Equal(t, 1, stats.DuplicatesRemoved)
		assert.Equal(t, 1, stats.InvalidPriceDropped)
		assert.Equal(t, 2, stats.RowsOut)

		assert.Equal(t, 1, cleaned[0].ID)
		assert.Equal(t, "Widget", cleaned[0].Name)
		assert.True(t, cleaned[0].Price.Equal(decimal.NewFromInt(10)))

		assert.Equal(t, 2, cleaned[1].ID)
		assert.Equal(t, "Produto 2", cleaned[1].Name)
		assert.Equal(t, 1, stats.NamesDefaulted)
	})

	t.Run("duplicate ids keep first valid occurrence", func(t *testing.T) {
		raw := []model.RawProduct{
			{ID: "7", Name: "Caneta Azul", Price: "2.50", Category: "Papelaria"},
			{ID: "7", Name: "Caneta Azul", Price: "3.00", Category: "Papelaria"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 1)
		assert.Equal(t, 1, stats.DuplicatesRemoved)
		assert.True(t, cleaned[0].Price.Equal(decimal.RequireFromString("2.50")))
	})

	t.Run("malformed id is dropped", func(t *testing.T) {
		raw := []model.RawProduct{
			{ID: "abc", Name: "Teclado", Price: "100", Category: ""},
			{ID: "3", Name: "Teclado", Price: "100", Category: ""},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 1)
		assert.Equal(t, 1, stats.MalformedDropped)
	})

	t.Run("category inferred from name tokens", func(t *testing.T) {
		raw := []model.RawProduct{
			{ID: "1", Name: "Notebook Pro 15", Price: "4500", Category: ""},
			{ID: "2", Name: "Cadeira Presidente", Price: "899.90", Category: ""},
			{ID: "3", Name: "Luminária", Price: "75", Category: ""},
			{ID: "4", Name: "Mesa de Escritório", Price: "600", Category: "Móveis"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 4)

		assert.Equal(t, "Eletrônicos", cleaned[0].Category)
		assert.Equal(t, "Móveis", cleaned[1].Category)
		assert.Equal(t, "Outros", cleaned[2].Category)
		assert.Equal(t, "Móveis", cleaned[3].Category)
		assert.Equal(t, 3, stats.CategoriesInferred)
	})

	t.Run("comma decimal separator is accepted", func(t *testing.T) {
		raw := []model.RawProduct{
			{ID: "9", Name: "Monitor 24", Price: "1299,90", Category: ""},
		}

		cleaned, _, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 1)
		assert.True(t, cleaned[0].Price.Equal(decimal.RequireFromString("1299.90")))
	})
}

func TestProductCleaner_Idempotent(t *testing.T) {
	c := NewProductCleaner(testCleaningConfig(), zap.NewNop())

	raw := []model.RawProduct{
		{ID: "1", Name: "Notebook Pro", Price: "4500", Category: ""},
		{ID: "1", Name: "Notebook Pro", Price: "4500", Category: ""},
		{ID: "2", Name: "", Price: "20", Category: ""},
	}

	first, _, err := c.Clean(raw)
	require.NoError(t, err)

	// Feed the cleaned output back through as raw rows.
	again := make([]model.RawProduct, 0, len(first))
	for _, p := range first {
		again = append(again, model.RawProduct{
			ID:       itoa(p.ID),
			Name:     p.Name,
			Price:    p.Price.String(),
			Category: p.Category,
		})
	}

	second, stats, err := c.Clean(again)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Zero(t, stats.DuplicatesRemoved)
	assert.Zero(t, stats.InvalidPriceDropped)
	assert.Zero(t, stats.NamesDefaulted)
	assert.Zero(t, stats.CategoriesInferred)
}
