package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/config"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cleaning := &config.CleaningConfig{
		DefaultAge:                   30,
		MinAge:                       18,
		MaxAge:                       70,
		FallbackDate:                 time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateImputationAlertThreshold: 0.15,
		CategoryKeywords:             map[string]string{"notebook": "Eletrônicos"},
		DefaultCategory:              "Outros",
		DefaultRole:                  "Não Informado",
	}

	return &config.Config{
		SkipDatabase: true,
		ProductsCSV: writeFixture(t, dir, "produtos.csv",
			"id_produto;nome;preco;categoria\n"+
				"1;Notebook Pro;4500;\n"+
				"1;Notebook Pro;4500;\n"+
				"2;Mouse Sem Fio;89,90;Periféricos\n"),
		EmployeesCSV: writeFixture(t, dir, "empregados.csv",
			"id_empregado;nome;idade;cargo\n"+
				"10;Ana;30;Vendedor\n"+
				";Bruno;;Vendedor\n"),
		SalesCSV: writeFixture(t, dir, "vendas.csv",
			"id_venda;id_produto;id_empregado;quantidade;valor_unitario;valor_total;data\n"+
				"100;1;10;2;4500;1;10/03/2023\n"+
				"101;2;10;1;89,90;;\n"+
				"102;9;10;1;10;10;11/03/2023\n"),
		ParquetDir: filepath.Join(dir, "parquet-files"),
		ReportDir:  filepath.Join(dir, "relatorios"),
		Cleaning:   cleaning,
		LogLevel:   "info",
		LogFormat:  "json",
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = New(testConfig(t), nil, nil)
	assert.Error(t, err)

	p, err := New(testConfig(t), nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.Tables.Products, 2)
	assert.Len(t, result.Tables.Employees, 2)
	assert.Len(t, result.Tables.Sales, 2)

	assert.Equal(t, 1, result.Stats.Products.DuplicatesRemoved)
	assert.Equal(t, 1, result.Stats.Employees.IDsSynthesized)
	assert.Equal(t, 1, result.Stats.Sales.RefIntegrityDropsProduct)
	assert.Equal(t, 1, result.Quality.Sales.Counts["dates_imputed_by_employee"])

	// Both output collaborators wrote their files.
	for _, name := range []string{"produtos.parquet", "empregados.parquet", "vendas.parquet"} {
		_, err := os.Stat(filepath.Join(cfg.ParquetDir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(cfg.ReportDir, "relatorio.txt"))
	assert.NoError(t, err)
}

func TestPipeline_RunFailsOnMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.SalesCSV = filepath.Join(t.TempDir(), "nope.csv")

	p, err := New(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stage failed")
}
