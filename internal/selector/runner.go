package selector

import (
	"context"
	"sync"
	"time"

	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/logger"
)

// Report is the outcome of one activated selector for one run.
type Report struct {
	Alias     string    `json:"alias"`
	Strategy  string    `json:"strategy"`
	TradeDate time.Time `json:"trade_date"`
	Picks     []string  `json:"picks"`
}

// Runner evaluates configured selectors against a price universe.
//
// Indicator series are derived once per instrument per run and shared
// read-only by every selector. Instruments are independent, so the warmup
// runs on a bounded worker pool; the predicate pass itself iterates codes
// in sorted order so results are stable across runs.
type Runner struct {
	log     *logger.Logger
	workers int
}

// NewRunner creates a runner. workers bounds the indicator warmup pool;
// values below 1 fall back to a single worker.
func NewRunner(log *logger.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{log: log, workers: workers}
}

// Run evaluates every active configuration entry for tradeDate.
//
// A construction failure (unknown strategy name, bad parameter type) is
// logged and that entry skipped; the remaining entries still run. An
// instrument with no bar at or before tradeDate, or with less history than
// the strategy needs, is silently excluded.
func (r *Runner) Run(ctx context.Context, cfgs []strategyconfig.Selector, tradeDate time.Time, universe market.Universe) ([]Report, error) {
	type bound struct {
		alias    string
		strategy Strategy
	}

	active := make([]bound, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Active() {
			r.log.WithField("alias", cfg.Label()).Debug("Selector deactivated, skipping")
			continue
		}
		strat, err := New(cfg.Strategy, cfg.Params)
		if err != nil {
			r.log.WithError(err).WithField("alias", cfg.Label()).Warn("Selector construction failed, skipping entry")
			continue
		}
		active = append(active, bound{alias: cfg.Label(), strategy: strat})
	}

	resolved := resolveTradeDate(universe, tradeDate)
	codes := universe.Codes()
	indicators := r.warmup(ctx, universe, codes)

	reports := make([]Report, 0, len(active))
	for _, b := range active {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		picks := make([]string, 0)
		for i, code := range codes {
			s := universe[code]
			ind := indicators[i]
			if ind == nil {
				continue
			}
			idx, ok := s.IndexAtOrBefore(tradeDate)
			if !ok || idx+1 < b.strategy.MinBars() {
				continue
			}
			if b.strategy.Match(s, idx, ind) {
				picks = append(picks, code)
			}
		}

		r.log.WithFields(map[string]interface{}{
			"alias":      b.alias,
			"strategy":   b.strategy.Name(),
			"trade_date": resolved.Format("2006-01-02"),
			"picks":      len(picks),
			"universe":   len(codes),
		}).Info("Selector evaluated")

		reports = append(reports, Report{
			Alias:     b.alias,
			Strategy:  b.strategy.Name(),
			TradeDate: resolved,
			Picks:     picks,
		})
	}
	return reports, nil
}

// warmup derives indicator sets for every instrument on a bounded pool.
// Results are positionally aligned with codes, so no locking is needed.
func (r *Runner) warmup(ctx context.Context, universe market.Universe, codes []string) []*Indicators {
	out := make([]*Indicators, len(codes))
	sem := make(chan struct{}, r.workers)

	var wg sync.WaitGroup
	for i, code := range codes {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, s *market.Series) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = ComputeIndicators(s)
		}(i, universe[code])
	}
	wg.Wait()
	return out
}

// resolveTradeDate returns the latest bar date at or before requested
// across the whole universe. With no qualifying bar anywhere the requested
// date is reported unchanged and every pick set comes back empty.
func resolveTradeDate(universe market.Universe, requested time.Time) time.Time {
	var best time.Time
	for _, s := range universe {
		if idx, ok := s.IndexAtOrBefore(requested); ok {
			if d := s.Bars[idx].Date; d.After(best) {
				best = d
			}
		}
	}
	if best.IsZero() {
		return requested
	}
	return best
}
