// pkg/cleaner/coerce.go
package cleaner

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dfarias/comercial-etl/pkg/model"
)

// Coercion helpers shared by the three cleaners. All of them treat a blank
// string as an error so callers can distinguish "missing" from "malformed"
// before deciding whether to impute or drop.

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// toInt attempts to convert a raw field to an int
func toInt(s string) (int, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, errors.New("empty string")
	}

	value, err := strconv.Atoi(cleaned)
	if err != nil {
		// Some sources write integers as "42.0"
		f, ferr := strconv.ParseFloat(cleaned, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, err
		}
		return int(f), nil
	}
	return value, nil
}

// toDecimal attempts to convert a raw field to a decimal, accepting the
// comma decimal separator used by some of the source files
func toDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, errors.New("empty string")
	}

	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return decimal.NewFromString(cleaned)
}

// toDate parses a calendar date in the source DD/MM/YYYY format
func toDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, errors.New("empty string")
	}

	return time.Parse(model.DateLayout, cleaned)
}

// medianInt returns the median of the values, rounding the midpoint of an
// even-sized set to the nearest integer. The slice is not modified.
func medianInt(values []int) int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return int(math.Round(float64(sorted[n/2-1]+sorted[n/2]) / 2))
}

// medianTime returns the median of the times, taking the midpoint day of an
// even-sized set. The slice is not modified.
func medianTime(values []time.Time) time.Time {
	sorted := make([]time.Time, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}

	lo, hi := sorted[n/2-1], sorted[n/2]
	mid := lo.Add(hi.Sub(lo) / 2)
	return time.Date(mid.Year(), mid.Month(), mid.Day(), 0, 0, 0, 0, mid.Location())
}
