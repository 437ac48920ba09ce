package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCleaningConfig_Defaults(t *testing.T) {
	cfg, err := LoadCleaningConfig()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.DefaultAge)
	assert.Equal(t, 18, cfg.MinAge)
	assert.Equal(t, 70, cfg.MaxAge)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.FallbackDate)
	assert.Equal(t, "Outros", cfg.DefaultCategory)
	assert.Equal(t, "Não Informado", cfg.DefaultRole)
	assert.Equal(t, "Eletrônicos", cfg.CategoryKeywords["notebook"])

	require.NoError(t, cfg.Validate())
}

func TestLoadCleaningConfig_Overrides(t *testing.T) {
	t.Setenv("CLEANING_DEFAULT_AGE", "25")
	t.Setenv("CLEANING_FALLBACK_DATE", "15/06/2022")
	t.Setenv("CLEANING_CATEGORY_KEYWORDS", "fone:Áudio, Cabo:Acessórios")

	cfg, err := LoadCleaningConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.DefaultAge)
	assert.Equal(t, time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC), cfg.FallbackDate)
	assert.Equal(t, "Áudio", cfg.CategoryKeywords["fone"])
	assert.Equal(t, "Acessórios", cfg.CategoryKeywords["cabo"])
}

func TestLoadCleaningConfig_InvalidFallbackDate(t *testing.T) {
	t.Setenv("CLEANING_FALLBACK_DATE", "2023-01-01")

	_, err := LoadCleaningConfig()
	assert.Error(t, err)
}

func TestCleaningConfig_Validate(t *testing.T) {
	base := func() *CleaningConfig {
		return &CleaningConfig{
			DefaultAge:                   30,
			MinAge:                       18,
			MaxAge:                       70,
			FallbackDate:                 time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
			DateImputationAlertThreshold: 0.15,
			DefaultCategory:              "Outros",
			DefaultRole:                  "Não Informado",
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.MaxAge = 10
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DefaultAge = 90
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DateImputationAlertThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.FallbackDate = time.Time{}
	assert.Error(t, cfg.Validate())
}
