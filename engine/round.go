package engine

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// roundTo rounds the exact binary value of v to the given number of decimal
// places, ties to even. 2.25 rounds to 2.2; 2.35 (stored as 2.3500000000000001)
// rounds to 2.4.
func roundTo(v float64, places int32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', int(places), 64), 64)
	if err != nil {
		return v
	}
	return f
}

// sumRounded adds values in decimal space so that 3.2 + 1.8 is exactly 5.0.
// The sum of one-decimal values has no rounding tie, so Round only trims.
func sumRounded(values []float64, places int32) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	// Float64 reports whether the conversion was exact; the nearest float is
	// what callers want either way.
	f, _ := total.Round(places).Float64()
	return f
}
