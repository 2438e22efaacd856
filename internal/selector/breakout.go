package selector

import (
	"github.com/tradebyz/screener/internal/indicator"
	"github.com/tradebyz/screener/internal/market"
)

// BreakoutParams configures the breakout-with-volume strategy.
type BreakoutParams struct {
	JThreshold      float64 `json:"j_threshold"`
	JQThreshold     float64 `json:"j_q_threshold"`
	UpThreshold     float64 `json:"up_threshold"`
	VolumeThreshold float64 `json:"volume_threshold"`
	Offset          int     `json:"offset"`
	MaxWindow       int     `json:"max_window"`
	PriceRangePct   float64 `json:"price_range_pct"`
}

func DefaultBreakoutParams() BreakoutParams {
	return BreakoutParams{
		JThreshold:      1,
		JQThreshold:     0.10,
		UpThreshold:     3.0,
		VolumeThreshold: 0.6667,
		Offset:          15,
		MaxWindow:       60,
		PriceRangePct:   0.5,
	}
}

func (p BreakoutParams) validate() error {
	if err := requirePositive("offset", p.Offset); err != nil {
		return err
	}
	return requirePositive("max_window", p.MaxWindow)
}

// Breakout picks instruments that moved up more than up_threshold percent
// over the offset lookback on expanding volume, while J is off its lows and
// the overall price band over max_window remains contained.
type Breakout struct {
	p BreakoutParams
}

func NewBreakout(params map[string]any) (Strategy, error) {
	p := DefaultBreakoutParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Breakout{p: p}, nil
}

func (b *Breakout) Name() string { return NameBreakout }

func (b *Breakout) MinBars() int {
	if need := b.p.Offset + 1; need > b.p.MaxWindow {
		return need
	}
	return b.p.MaxWindow
}

func (b *Breakout) Match(s *market.Series, idx int, ind *Indicators) bool {
	j := ind.J[idx]
	q, ok := indicator.TrailingQuantile(ind.J, idx, b.p.MaxWindow, b.p.JQThreshold)
	if !ok || !(j > q) {
		return false
	}

	ref := idx - b.p.Offset
	if ref < 0 {
		return false
	}
	refClose := ind.Close[ref]
	if !(refClose > 0) {
		return false
	}
	upPct := (ind.Close[idx] - refClose) / refClose * 100
	if !(upPct > b.p.UpThreshold) {
		return false
	}

	refVolume := ind.Volume[ref]
	if !(refVolume > 0) {
		return false
	}
	if !(ind.Volume[idx]/refVolume > b.p.VolumeThreshold) {
		return false
	}

	rng, ok := indicator.RangePct(ind.Close, idx, b.p.MaxWindow)
	if !ok || rng > b.p.PriceRangePct {
		return false
	}

	return j > b.p.JThreshold
}
