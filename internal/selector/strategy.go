// Package selector implements the technical screening strategies and the
// runner that evaluates them against a price universe for a trade date.
//
// Every strategy is a pure predicate over one instrument's bar history and
// the indicator series derived from it. Strategies never perform I/O and
// never see bars after the evaluation index.
package selector

import (
	"github.com/tradebyz/screener/internal/indicator"
	"github.com/tradebyz/screener/internal/market"
)

// Strategy is one screening rule. Implementations are stateless after
// construction and safe for concurrent use.
type Strategy interface {
	// Name returns the registry name the strategy was constructed under.
	Name() string

	// MinBars returns the minimum history length (bars up to and including
	// the evaluation index) the predicate needs. Instruments with fewer
	// bars are skipped, not failed.
	MinBars() int

	// Match reports whether the instrument passes at idx. Indicator series
	// in ind are aligned with s.Bars; undefined entries are NaN and every
	// comparison against them is false.
	Match(s *market.Series, idx int, ind *Indicators) bool
}

// Indicators bundles the derived series strategies read. Computed once per
// instrument per run and shared read-only across all strategies.
type Indicators struct {
	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64

	K   []float64
	D   []float64
	J   []float64
	BBI []float64
	DIF []float64
}

// ComputeIndicators derives the full indicator set for one instrument.
func ComputeIndicators(s *market.Series) *Indicators {
	k, d, j := indicator.KDJ(s, indicator.KDJPeriod)
	return &Indicators{
		Close:  s.Closes(),
		High:   s.Highs(),
		Low:    s.Lows(),
		Volume: s.Volumes(),
		K:      k,
		D:      d,
		J:      j,
		BBI:    indicator.BBI(s),
		DIF:    indicator.DIF(s),
	}
}
