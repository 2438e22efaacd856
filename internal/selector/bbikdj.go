package selector

import (
	"github.com/tradebyz/screener/internal/indicator"
	"github.com/tradebyz/screener/internal/market"
)

// BBIKDJParams configures the uptrend-pullback strategy.
type BBIKDJParams struct {
	JThreshold    float64 `json:"j_threshold"`
	BBIMinWindow  int     `json:"bbi_min_window"`
	MaxWindow     int     `json:"max_window"`
	PriceRangePct float64 `json:"price_range_pct"`
	BBIQThreshold float64 `json:"bbi_q_threshold"`
	JQThreshold   float64 `json:"j_q_threshold"`
}

// DefaultBBIKDJParams returns the stock parameter set; configuration
// entries override individual fields.
func DefaultBBIKDJParams() BBIKDJParams {
	return BBIKDJParams{
		JThreshold:    1,
		BBIMinWindow:  20,
		MaxWindow:     60,
		PriceRangePct: 0.5,
		BBIQThreshold: 0.1,
		JQThreshold:   0.10,
	}
}

func (p BBIKDJParams) validate() error {
	if err := requirePositive("bbi_min_window", p.BBIMinWindow); err != nil {
		return err
	}
	return requirePositive("max_window", p.MaxWindow)
}

// BBIKDJ picks instruments in a sustained BBI uptrend whose J line has
// pulled back near the bottom of its trailing range while momentum (DIF)
// stays positive and the price band stays tight.
type BBIKDJ struct {
	p BBIKDJParams
}

// NewBBIKDJ constructs the strategy from a raw parameter mapping.
func NewBBIKDJ(params map[string]any) (Strategy, error) {
	p := DefaultBBIKDJParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &BBIKDJ{p: p}, nil
}

func (b *BBIKDJ) Name() string { return NameBBIKDJ }

func (b *BBIKDJ) MinBars() int { return b.p.MaxWindow }

func (b *BBIKDJ) Match(s *market.Series, idx int, ind *Indicators) bool {
	if !indicator.RisingAt(ind.BBI, idx, b.p.BBIMinWindow) {
		return false
	}

	j := ind.J[idx]
	q, ok := indicator.TrailingQuantile(ind.J, idx, b.p.MaxWindow, b.p.JQThreshold)
	if !ok || !(j > q) {
		return false
	}
	if !(j > b.p.JThreshold) {
		return false
	}

	if !(ind.DIF[idx] > 0) {
		return false
	}

	rng, ok := indicator.RangePct(ind.Close, idx, b.p.MaxWindow)
	return ok && rng <= b.p.PriceRangePct
}
