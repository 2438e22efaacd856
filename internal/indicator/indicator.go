// Package indicator derives technical series from daily price history.
// Every function is pure: the result is aligned 1:1 by index with the
// input and entries without enough trailing history are undefined (NaN).
// Comparing anything against an undefined entry is false, so predicates
// built on these series never need an explicit warmup guard.
package indicator

import (
	"math"

	"github.com/tradebyz/screener/internal/market"
)

// KDJPeriod is the standard stochastic lookback.
const KDJPeriod = 9

// neutralRSV substitutes for RSV while its window is still unfilled,
// the same value the K and D lines are seeded with.
const neutralRSV = 50.0

// Undefined returns the undefined indicator value.
func Undefined() float64 {
	return math.NaN()
}

// Defined reports whether v is a defined indicator value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// RSV computes the raw stochastic value over an n-bar window: the
// position of the close within the rolling high/low range, scaled to
// 0..100. Entries are undefined before the window fills and wherever
// the rolling range is zero.
func RSV(s *market.Series, n int) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		if i < n-1 {
			out[i] = Undefined()
			continue
		}

		hh := math.Inf(-1)
		ll := math.Inf(1)
		for k := i - n + 1; k <= i; k++ {
			hh = math.Max(hh, s.Bars[k].High)
			ll = math.Min(ll, s.Bars[k].Low)
		}

		if hh == ll {
			out[i] = Undefined()
			continue
		}
		out[i] = (s.Bars[i].Close - ll) / (hh - ll) * 100
	}
	return out
}

// KDJ computes the three-line stochastic oscillator from an n-bar RSV.
// K and D are seeded at 50 on the first bar; while RSV is still
// undefined the recursion substitutes the neutral 50, so all three
// lines are defined from the first bar onward.
func KDJ(s *market.Series, n int) (k, d, j []float64) {
	rsv := RSV(s, n)

	k = make([]float64, s.Len())
	d = make([]float64, s.Len())
	j = make([]float64, s.Len())

	for i := range rsv {
		r := rsv[i]
		if !Defined(r) {
			r = neutralRSV
		}

		if i == 0 {
			k[0] = neutralRSV
			d[0] = neutralRSV
		} else {
			k[i] = (2*k[i-1] + r) / 3
			d[i] = (2*d[i-1] + k[i]) / 3
		}
		j[i] = 3*k[i] - 2*d[i]
	}
	return k, d, j
}

// bbiWindows are the SMA lengths averaged into the BBI line.
var bbiWindows = [...]int{3, 6, 12, 24}

// BBI computes the bull/bear index: the mean of the 3, 6, 12 and 24 bar
// simple moving averages of the close. Undefined until the longest
// window fills.
func BBI(s *market.Series) []float64 {
	closes := s.Closes()

	smas := make([][]float64, len(bbiWindows))
	for wi, w := range bbiWindows {
		smas[wi] = SMA(closes, w)
	}

	out := make([]float64, len(closes))
	for i := range out {
		sum := 0.0
		defined := true
		for wi := range smas {
			v := smas[wi][i]
			if !Defined(v) {
				defined = false
				break
			}
			sum += v
		}
		if !defined {
			out[i] = Undefined()
			continue
		}
		out[i] = sum / float64(len(bbiWindows))
	}
	return out
}

// DIF computes the MACD difference line: EMA(12) minus EMA(26) of the
// close. Positive DIF signals positive momentum.
func DIF(s *market.Series) []float64 {
	closes := s.Closes()
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)

	out := make([]float64, len(closes))
	for i := range out {
		out[i] = fast[i] - slow[i]
	}
	return out
}

// SMA computes the n-bar simple moving average, undefined until the
// window fills.
func SMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i < n-1 {
			out[i] = Undefined()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// EMA computes the exponential moving average with smoothing 2/(n+1),
// seeded with the first value. Defined from the first bar.
func EMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(n) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// SustainedRise flags every index ending a run of at least minWindow
// consecutive non-decreasing steps of values. A step touching an
// undefined entry breaks the run.
func SustainedRise(values []float64, minWindow int) []bool {
	out := make([]bool, len(values))
	for i := range values {
		out[i] = RisingAt(values, i, minWindow)
	}
	return out
}

// RisingAt reports whether the minWindow steps ending at idx are all
// non-decreasing and defined.
func RisingAt(values []float64, idx, minWindow int) bool {
	if minWindow <= 0 || idx-minWindow < 0 {
		return false
	}
	for k := idx - minWindow + 1; k <= idx; k++ {
		prev, cur := values[k-1], values[k]
		if !Defined(prev) || !Defined(cur) || cur < prev {
			return false
		}
	}
	return true
}

// RangePct returns the relative spread (max-min)/min of values over the
// closed trailing window of the given length ending at idx. ok is false
// when the window is empty or the minimum is not positive.
func RangePct(values []float64, idx, window int) (float64, bool) {
	if idx < 0 || idx >= len(values) || window <= 0 {
		return 0, false
	}

	lo := idx - window + 1
	if lo < 0 {
		lo = 0
	}

	min := math.Inf(1)
	max := math.Inf(-1)
	for k := lo; k <= idx; k++ {
		v := values[k]
		if !Defined(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	if math.IsInf(min, 1) || min <= 0 {
		return 0, false
	}
	return (max - min) / min, true
}
