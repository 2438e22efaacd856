package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/tradebyz/screener/internal/fetch"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/report"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/logger"
)

// PickSink persists run output. Nil disables persistence.
type PickSink interface {
	SaveReports(ctx context.Context, configHash string, reports []selector.Report) error
}

// ScreenJob is the daily pipeline: refresh bar data, run every configured
// selector for today, report and optionally persist the picks.
type ScreenJob struct {
	schedule   string
	configPath string

	fetcher  *fetch.Fetcher // nil means screen local data only
	bars     *market.Store
	runner   *selector.Runner
	reporter *report.Reporter
	sink     PickSink
	log      *logger.Logger
}

func NewScreenJob(
	schedule, configPath string,
	fetcher *fetch.Fetcher,
	bars *market.Store,
	runner *selector.Runner,
	reporter *report.Reporter,
	sink PickSink,
	log *logger.Logger,
) *ScreenJob {
	return &ScreenJob{
		schedule:   schedule,
		configPath: configPath,
		fetcher:    fetcher,
		bars:       bars,
		runner:     runner,
		reporter:   reporter,
		sink:       sink,
		log:        log,
	}
}

func (j *ScreenJob) Name() string     { return "screen" }
func (j *ScreenJob) Schedule() string { return j.schedule }

func (j *ScreenJob) Run(ctx context.Context) error {
	selectors, err := strategyconfig.Load(j.configPath)
	if err != nil {
		return err
	}

	today := market.Day(time.Now().UTC())

	var codes []string
	if j.fetcher != nil {
		codes, err = j.fetcher.Universe(ctx)
		if err != nil {
			return fmt.Errorf("build universe: %w", err)
		}
		stats := j.fetcher.Sync(ctx, codes, today)
		if len(stats.Failed) == stats.Total && stats.Total > 0 {
			return fmt.Errorf("sync failed for all %d codes", stats.Total)
		}
	} else {
		codes, err = j.bars.Codes()
		if err != nil {
			return err
		}
	}

	universe, err := j.bars.LoadUniverse(codes)
	if err != nil {
		return err
	}

	reports, err := j.runner.Run(ctx, selectors, today, universe)
	if err != nil {
		return err
	}

	enriched := j.reporter.Enrich(ctx, reports)
	j.reporter.Log(enriched)

	if j.sink != nil {
		hash, err := strategyconfig.Hash(selectors)
		if err != nil {
			return err
		}
		if err := j.sink.SaveReports(ctx, hash, reports); err != nil {
			return fmt.Errorf("persist picks: %w", err)
		}
	}
	return nil
}
