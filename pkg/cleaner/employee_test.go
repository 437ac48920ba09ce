package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/model"
)

func TestEmployeeCleaner_Clean(t *testing.T) {
	c := NewEmployeeCleaner(testCleaningConfig(), zap.NewNop())

	t.Run("empty input is a hard error", func(t *testing.T) {
		_, _, err := c.Clean(nil)
		require.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("missing age imputed by role median", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "1", Name: "Ana", Age: "30", Role: "Vendedor"},
			{ID: "2", Name: "Bruno", Age: "40", Role: "Vendedor"},
			{ID: "3", Name: "Carla", Age: "", Role: "Vendedor"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 3)

		assert.Equal(t, 35, cleaned[2].Age)
		assert.Equal(t, 1, stats.AgesImputedByRole)
		assert.Zero(t, stats.AgesImputedGlobally)
		assert.Zero(t, stats.AgesDefaulted)
	})

	t.Run("age falls back to global median when role has no valid ages", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "1", Name: "Ana", Age: "30", Role: "Vendedor"},
			{ID: "2", Name: "Bruno", Age: "50", Role: "Vendedor"},
			{ID: "3", Name: "Carla", Age: "", Role: "Gerente"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, 40, cleaned[2].Age)
		assert.Equal(t, 1, stats.AgesImputedGlobally)
	})

	t.Run("age falls back to default when no valid age exists", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "1", Name: "Ana", Age: "", Role: "Vendedor"},
			{ID: "2", Name: "Bruno", Age: "150", Role: "Gerente"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, 30, cleaned[0].Age)
		assert.Equal(t, 30, cleaned[1].Age)
		assert.Equal(t, 2, stats.AgesDefaulted)
	})

	t.Run("out of range age goes through the cascade", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "1", Name: "Ana", Age: "17", Role: "Vendedor"},
			{ID: "2", Name: "Bruno", Age: "71", Role: "Vendedor"},
			{ID: "3", Name: "Carla", Age: "44", Role: "Vendedor"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, 44, cleaned[0].Age)
		assert.Equal(t, 44, cleaned[1].Age)
		assert.Equal(t, 2, stats.AgesImputedByRole)

		for _, e := range cleaned {
			assert.GreaterOrEqual(t, e.Age, 18)
			assert.LessOrEqual(t, e.Age, 70)
		}
	})

	t.Run("missing ids synthesized after the maximum in row order", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "", Name: "Ana", Age: "30", Role: "Vendedor"},
			{ID: "10", Name: "Bruno", Age: "40", Role: "Gerente"},
			{ID: "", Name: "Carla", Age: "25", Role: "Vendedor"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 3)

		assert.Equal(t, 11, cleaned[0].ID)
		assert.Equal(t, 10, cleaned[1].ID)
		assert.Equal(t, 12, cleaned[2].ID)
		assert.Equal(t, 2, stats.IDsSynthesized)
	})

	t.Run("duplicates keep first occurrence", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "5", Name: "Ana", Age: "30", Role: "Vendedor"},
			{ID: "5", Name: "Outra Ana", Age: "31", Role: "Gerente"},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		require.Len(t, cleaned, 1)
		assert.Equal(t, "Ana", cleaned[0].Name)
		assert.Equal(t, 1, stats.DuplicatesRemoved)
	})

	t.Run("blank name and role get defaults", func(t *testing.T) {
		raw := []model.RawEmployee{
			{ID: "4", Name: "", Age: "28", Role: "  "},
		}

		cleaned, stats, err := c.Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, "Funcionário 4", cleaned[0].Name)
		assert.Equal(t, "Não Informado", cleaned[0].Role)
		assert.Equal(t, 1, stats.NamesDefaulted)
		assert.Equal(t, 1, stats.RolesDefaulted)
	})
}

func TestEmployeeCleaner_Idempotent(t *testing.T) {
	c := NewEmployeeCleaner(testCleaningConfig(), zap.NewNop())

	raw := []model.RawEmployee{
		{ID: "1", Name: "Ana", Age: "30", Role: "Vendedor"},
		{ID: "", Name: "Bruno", Age: "", Role: "Vendedor"},
		{ID: "1", Name: "Ana", Age: "30", Role: "Vendedor"},
	}

	first, _, err := c.Clean(raw)
	require.NoError(t, err)

	again := make([]model.RawEmployee, 0, len(first))
	for _, e := range first {
		again = append(again, model.RawEmployee{
			ID:   itoa(e.ID),
			Name: e.Name,
			Age:  itoa(e.Age),
			Role: e.Role,
		})
	}

	second, stats, err := c.Clean(again)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Zero(t, stats.DuplicatesRemoved)
	assert.Zero(t, stats.IDsSynthesized)
	assert.Zero(t, stats.NamesDefaulted)
	assert.Zero(t, stats.AgesImputedByRole+stats.AgesImputedGlobally+stats.AgesDefaulted)
}
