package selector

import (
	"github.com/tradebyz/screener/internal/indicator"
	"github.com/tradebyz/screener/internal/market"
)

// ShortLongParams configures the golden-cross pullback strategy.
type ShortLongParams struct {
	NShort        int     `json:"n_short"`
	NLong         int     `json:"n_long"`
	M             int     `json:"m"`
	BBIMinWindow  int     `json:"bbi_min_window"`
	MaxWindow     int     `json:"max_window"`
	BBIQThreshold float64 `json:"bbi_q_threshold"`
}

func DefaultShortLongParams() ShortLongParams {
	return ShortLongParams{
		NShort:        3,
		NLong:         21,
		M:             3,
		BBIMinWindow:  2,
		MaxWindow:     60,
		BBIQThreshold: 0.2,
	}
}

func (p ShortLongParams) validate() error {
	for _, c := range []struct {
		name string
		v    int
	}{
		{"n_short", p.NShort},
		{"n_long", p.NLong},
		{"m", p.M},
		{"bbi_min_window", p.BBIMinWindow},
		{"max_window", p.MaxWindow},
	} {
		if err := requirePositive(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

// ShortLong picks instruments whose short moving average crossed above the
// long one within the last m bars while BBI sits in the bottom of its
// recent range, a fresh cross that has not run away yet.
type ShortLong struct {
	p ShortLongParams
}

func NewShortLong(params map[string]any) (Strategy, error) {
	p := DefaultShortLongParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &ShortLong{p: p}, nil
}

func (s *ShortLong) Name() string { return NameShortLong }

func (s *ShortLong) MinBars() int {
	// The cross check at idx-m+1 reads the SMA one bar earlier, which
	// itself needs n_long bars of history.
	if need := s.p.NLong + s.p.M + 1; need > s.p.MaxWindow {
		return need
	}
	return s.p.MaxWindow
}

func (s *ShortLong) Match(series *market.Series, idx int, ind *Indicators) bool {
	smaShort := indicator.SMA(ind.Close, s.p.NShort)
	smaLong := indicator.SMA(ind.Close, s.p.NLong)

	if !crossedAbove(smaShort, smaLong, idx, s.p.M) {
		return false
	}

	bbi := ind.BBI[idx]
	q, ok := indicator.TrailingQuantile(ind.BBI, idx, s.p.BBIMinWindow, s.p.BBIQThreshold)
	return ok && bbi < q
}

// crossedAbove reports whether fast crossed from at-or-below to above slow
// at any bar in the closed window [idx-m+1, idx]. Undefined entries never
// form a cross.
func crossedAbove(fast, slow []float64, idx, m int) bool {
	for t := idx - m + 1; t <= idx; t++ {
		if t < 1 {
			continue
		}
		if !indicator.Defined(fast[t]) || !indicator.Defined(slow[t]) ||
			!indicator.Defined(fast[t-1]) || !indicator.Defined(slow[t-1]) {
			continue
		}
		if fast[t] > slow[t] && fast[t-1] <= slow[t-1] {
			return true
		}
	}
	return false
}
