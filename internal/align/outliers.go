package align

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile (0 ≤ p ≤ 1) of sorted values using linear
// interpolation between closest ranks. It returns NaN for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Fences returns the IQR fences [Q1 - k*IQR, Q3 + k*IQR] for values.
// ok is false when fewer than minValues values are available.
func Fences(values []float64, k float64, minValues int) (lo, hi float64, ok bool) {
	if len(values) < minValues || len(values) == 0 {
		return 0, 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, true
}
