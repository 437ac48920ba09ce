// pkg/cleaner/strategy.go
package cleaner

// Imputation strategy names, recorded in the stats so the quality report can
// break repairs down by tier.
const (
	strategyMedianByRole     = "mediana_cargo"
	strategyMedianByEmployee = "mediana_empregado"
	strategyMedianGlobal     = "mediana_global"
	strategyDefaultAge       = "idade_padrao"
	strategyFallbackDate     = "data_padrao"
)

// strategy is a single tier of an imputation cascade. apply is a pure
// function over the row key and whatever context the cleaner captured when
// building the cascade; it returns the imputed value and whether this tier
// could produce one.
type strategy[R, V any] struct {
	name  string
	apply func(row R) (V, bool)
}

// runCascade applies the strategies in order and stops at the first tier
// that produces a value, returning it together with the tier's name. The
// final tier of every cascade in this package is unconditional, so ok is
// false only for an empty or exhausted strategy table.
func runCascade[R, V any](strategies []strategy[R, V], row R) (V, string, bool) {
	for _, s := range strategies {
		if value, ok := s.apply(row); ok {
			return value, s.name, true
		}
	}

	var zero V
	return zero, "", false
}
