package cleaner

import (
	"strconv"
	"time"

	"github.com/dfarias/comercial-etl/pkg/config"
)

func testCleaningConfig() *config.CleaningConfig {
	return &config.CleaningConfig{
		DefaultAge:                   30,
		MinAge:                       18,
		MaxAge:                       70,
		FallbackDate:                 time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateImputationAlertThreshold: 0.15,
		CategoryKeywords: map[string]string{
			"notebook": "Eletrônicos",
			"monitor":  "Eletrônicos",
			"celular":  "Eletrônicos",
			"teclado":  "Periféricos",
			"mouse":    "Periféricos",
			"cadeira":  "Móveis",
			"mesa":     "Móveis",
			"caneta":   "Papelaria",
			"caderno":  "Papelaria",
		},
		DefaultCategory: "Outros",
		DefaultRole:     "Não Informado",
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
