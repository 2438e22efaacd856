package indicator

import (
	"math"
	"sort"
)

// Quantile returns the linear-interpolation percentile of the defined
// entries of values. q is clamped to [0,1]. ok is false when no entry
// is defined, in which case any comparison against the result must be
// treated as false by the caller.
func Quantile(values []float64, q float64) (float64, bool) {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if Defined(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return 0, false
	}

	sort.Float64s(defined)

	if q < 0 {
		q = 0
	} else if q > 1 {
		q = 1
	}

	pos := q * float64(len(defined)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return defined[lo], true
	}

	frac := pos - float64(lo)
	return defined[lo] + frac*(defined[hi]-defined[lo]), true
}

// TrailingQuantile computes Quantile over the closed trailing window of
// the given length ending at idx: [max(0, idx-window+1), idx].
func TrailingQuantile(values []float64, idx, window int, q float64) (float64, bool) {
	if idx < 0 || idx >= len(values) || window <= 0 {
		return 0, false
	}

	lo := idx - window + 1
	if lo < 0 {
		lo = 0
	}
	return Quantile(values[lo:idx+1], q)
}
