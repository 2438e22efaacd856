package selector

import (
	"github.com/tradebyz/screener/internal/indicator"
	"github.com/tradebyz/screener/internal/market"
)

// PeakParams configures the gap-fill reversal strategy.
type PeakParams struct {
	JThreshold    float64 `json:"j_threshold"`
	MaxWindow     int     `json:"max_window"`
	FlucThreshold float64 `json:"fluc_threshold"`
	JQThreshold   float64 `json:"j_q_threshold"`
	GapThreshold  float64 `json:"gap_threshold"`
}

func DefaultPeakParams() PeakParams {
	return PeakParams{
		JThreshold:    10,
		MaxWindow:     100,
		FlucThreshold: 0.03,
		JQThreshold:   0.10,
		GapThreshold:  0.2,
	}
}

func (p PeakParams) validate() error {
	return requirePositive("max_window", p.MaxWindow)
}

// Peak picks instruments that gapped above the previous bar's high on a
// wide-ranging day while J sits above both its trailing quantile and the
// absolute threshold.
type Peak struct {
	p PeakParams
}

func NewPeak(params map[string]any) (Strategy, error) {
	p := DefaultPeakParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Peak{p: p}, nil
}

func (p *Peak) Name() string { return NamePeak }

func (p *Peak) MinBars() int { return p.p.MaxWindow }

func (p *Peak) Match(s *market.Series, idx int, ind *Indicators) bool {
	j := ind.J[idx]
	q, ok := indicator.TrailingQuantile(ind.J, idx, p.p.MaxWindow, p.p.JQThreshold)
	if !ok || !(j > q) {
		return false
	}

	low := ind.Low[idx]
	if !(low > 0) {
		return false
	}
	if !((ind.High[idx]-low)/low > p.p.FlucThreshold) {
		return false
	}

	// The gap needs a previous bar to gap away from.
	if idx == 0 {
		return false
	}
	prevHigh := ind.High[idx-1]
	if !(prevHigh > 0) {
		return false
	}
	if !((low-prevHigh)/prevHigh > p.p.GapThreshold) {
		return false
	}

	return j > p.p.JThreshold
}
