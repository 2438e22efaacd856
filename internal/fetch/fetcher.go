package fetch

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/pkg/logger"
)

// Provider is the slice of the quote client the fetcher needs.
type Provider interface {
	FetchSnapshot(ctx context.Context) ([]quotes.Stock, error)
	FetchKline(ctx context.Context, code string, from, to time.Time) ([]market.Bar, error)
}

// BarStore is the local sink for fetched bars.
type BarStore interface {
	Load(code string) (*market.Series, error)
	Merge(code string, bars []market.Bar) (int, error)
}

// Stats summarizes one sync run.
type Stats struct {
	Total   int
	Updated int
	Fresh   int // already up to date, nothing fetched
	Failed  []string
}

// Fetcher keeps the local bar store in sync with the provider.
type Fetcher struct {
	provider Provider
	store    BarStore
	log      *logger.Logger

	filter    UniverseFilter
	startDate time.Time
	workers   int
}

// New creates a fetcher. startDate bounds how far back history is pulled
// for instruments with no local data; workers bounds provider concurrency.
func New(provider Provider, store BarStore, log *logger.Logger, filter UniverseFilter, startDate time.Time, workers int) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		provider:  provider,
		store:     store,
		log:       log,
		filter:    filter,
		startDate: startDate,
		workers:   workers,
	}
}

// Universe fetches the market snapshot and applies the configured filter.
func (f *Fetcher) Universe(ctx context.Context) ([]string, error) {
	stocks, err := f.provider.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := f.filter.Apply(stocks)
	if err != nil {
		return nil, err
	}
	f.log.WithFields(map[string]interface{}{
		"snapshot": len(stocks),
		"universe": len(codes),
	}).Info("Universe built")
	return codes, nil
}

// Sync brings every code's local history up to end. Instruments are
// independent, so codes are fetched on a bounded worker pool; a failure on
// one code is recorded and the rest continue.
func (f *Fetcher) Sync(ctx context.Context, codes []string, end time.Time) Stats {
	stats := Stats{Total: len(codes)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.workers)

	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(code string) {
			defer wg.Done()
			defer func() { <-sem }()

			updated, err := f.syncOne(ctx, code, end)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Failed = append(stats.Failed, code)
			case updated:
				stats.Updated++
			default:
				stats.Fresh++
			}
		}(code)
	}
	wg.Wait()

	f.log.WithFields(map[string]interface{}{
		"total":   stats.Total,
		"updated": stats.Updated,
		"fresh":   stats.Fresh,
		"failed":  len(stats.Failed),
	}).Info("Sync completed")
	return stats
}

// syncOne fetches the missing tail of one instrument's history and merges
// it into the store. With existing local data the fetch restarts at the
// last stored date so a revised final bar is picked up.
func (f *Fetcher) syncOne(ctx context.Context, code string, end time.Time) (bool, error) {
	from := f.startDate

	existing, err := f.store.Load(code)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.WithError(err).WithField("code", code).Warn("Local history unreadable, refetching from scratch")
		}
	} else if existing != nil && existing.Len() > 0 {
		last := existing.LastDate()
		if last.After(end) || last.Equal(end) {
			return false, nil
		}
		from = last
	}

	bars, err := f.provider.FetchKline(ctx, code, from, end)
	if err != nil {
		f.log.WithError(err).WithField("code", code).Error("Fetch failed")
		return false, err
	}
	if len(bars) == 0 {
		return false, nil
	}

	changed, err := f.store.Merge(code, bars)
	if err != nil {
		f.log.WithError(err).WithField("code", code).Error("Merge failed")
		return false, err
	}
	return changed > 0, nil
}
