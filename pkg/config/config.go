// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dfarias/comercial-etl/pkg/model"
)

// Config represents the application configuration
type Config struct {
	// Database connection for the load phase. Nil when SKIP_DATABASE_LOAD
	// is set, in which case the run only produces files.
	Postgres *PostgresConfig

	// SkipDatabase disables the persist stage entirely
	SkipDatabase bool

	// Input CSV paths (semicolon-delimited, UTF-8)
	ProductsCSV  string
	SalesCSV     string
	EmployeesCSV string

	// Output directories for the save phase
	ParquetDir string
	ReportDir  string

	// Cleaning rules
	Cleaning *CleaningConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// CleaningConfig holds the tunable parts of the transform rules. Everything
// that is policy rather than invariant lives here so it can change without
// touching cleaner code.
type CleaningConfig struct {
	// DefaultAge is the last-resort age when no valid age exists anywhere.
	DefaultAge int

	// MinAge and MaxAge bound the valid working-age range.
	MinAge int
	MaxAge int

	// FallbackDate is the last-resort sale date when no valid date exists
	// anywhere in the dataset.
	FallbackDate time.Time

	// DateImputationAlertThreshold is the fraction of imputed sale dates
	// above which the quality report raises a warning.
	DateImputationAlertThreshold float64

	// CategoryKeywords maps a lowercase token found in a product name to the
	// category assigned when the source category is blank.
	CategoryKeywords map[string]string

	// DefaultCategory is assigned when no keyword matches.
	DefaultCategory string

	// DefaultRole is assigned to employees with a blank role.
	DefaultRole string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ProductsCSV:  getEnv("PRODUCTS_CSV", "bases-de-dados/produtos.csv"),
		SalesCSV:     getEnv("SALES_CSV", "bases-de-dados/vendas.csv"),
		EmployeesCSV: getEnv("EMPLOYEES_CSV", "bases-de-dados/empregados.csv"),
		ParquetDir:   getEnv("PARQUET_DIR", "parquet-files"),
		ReportDir:    getEnv("REPORT_DIR", "relatorios"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	cleaning, err := LoadCleaningConfig()
	if err != nil {
		return nil, errors.New("failed to load cleaning configuration: " + err.Error())
	}
	cfg.Cleaning = cleaning

	cfg.SkipDatabase = getEnv("SKIP_DATABASE_LOAD", "false") == "true"
	if !cfg.SkipDatabase {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCleaningConfig loads the transform rules from environment variables,
// falling back to the documented defaults.
func LoadCleaningConfig() (*CleaningConfig, error) {
	cfg := &CleaningConfig{
		DefaultAge:                   getEnvAsInt("CLEANING_DEFAULT_AGE", 30),
		MinAge:                       getEnvAsInt("CLEANING_MIN_AGE", 18),
		MaxAge:                       getEnvAsInt("CLEANING_MAX_AGE", 70),
		DateImputationAlertThreshold: getEnvAsFloat("CLEANING_DATE_ALERT_THRESHOLD", 0.15),
		CategoryKeywords:             defaultCategoryKeywords(),
		DefaultCategory:              getEnv("CLEANING_DEFAULT_CATEGORY", "Outros"),
		DefaultRole:                  getEnv("CLEANING_DEFAULT_ROLE", "Não Informado"),
	}

	fallback := getEnv("CLEANING_FALLBACK_DATE", "01/01/2023")
	parsed, err := time.Parse(model.DateLayout, fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANING_FALLBACK_DATE %q: %w", fallback, err)
	}
	cfg.FallbackDate = parsed

	// Optional keyword overrides in "token:categoria" pairs
	if pairs := getEnvAsPairs("CLEANING_CATEGORY_KEYWORDS"); len(pairs) > 0 {
		cfg.CategoryKeywords = pairs
	}

	return cfg, nil
}

// defaultCategoryKeywords is the built-in token-to-category table used when
// no override is configured.
func defaultCategoryKeywords() map[string]string {
	return map[string]string{
		"notebook": "Eletrônicos",
		"monitor":  "Eletrônicos",
		"celular":  "Eletrônicos",
		"teclado":  "Periféricos",
		"mouse":    "Periféricos",
		"cadeira":  "Móveis",
		"mesa":     "Móveis",
		"caneta":   "Papelaria",
		"caderno":  "Papelaria",
	}
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Postgres == nil && !c.SkipDatabase {
		return errors.New("postgreSQL configuration is required")
	}

	if c.Cleaning == nil {
		return errors.New("cleaning configuration is required")
	}

	return c.Cleaning.Validate()
}

// Validate checks the cleaning rules for internally consistent values
func (c *CleaningConfig) Validate() error {
	if c.MinAge <= 0 || c.MaxAge <= c.MinAge {
		return fmt.Errorf("invalid age range [%d, %d]", c.MinAge, c.MaxAge)
	}

	if c.DefaultAge < c.MinAge || c.DefaultAge > c.MaxAge {
		return fmt.Errorf("default age %d outside valid range [%d, %d]",
			c.DefaultAge, c.MinAge, c.MaxAge)
	}

	if c.DateImputationAlertThreshold <= 0 || c.DateImputationAlertThreshold > 1 {
		return errors.New("date imputation alert threshold must be in (0, 1]")
	}

	if c.FallbackDate.IsZero() {
		return errors.New("fallback date is required")
	}

	if c.DefaultCategory == "" {
		return errors.New("default category is required")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsPairs parses a comma-separated list of "token:categoria" pairs
func getEnvAsPairs(key string) map[string]string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	pairs := make(map[string]string)
	for _, item := range strings.Split(value, ",") {
		k, v, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			pairs[strings.ToLower(k)] = v
		}
	}

	if len(pairs) == 0 {
		return nil
	}

	return pairs
}
