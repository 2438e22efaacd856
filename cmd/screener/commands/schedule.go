package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/fetch"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/report"
	"github.com/tradebyz/screener/internal/scheduler"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/internal/store"
	"github.com/tradebyz/screener/pkg/database"
	"github.com/tradebyz/screener/pkg/httputil"
	"github.com/tradebyz/screener/pkg/redis"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily screen job on its cron schedule",
	Long: `Runs the screen job (fetch, select, report) on the configured cron
schedule until interrupted.

The schedule comes from SCREEN_SCHEDULE (six-field cron with seconds),
default "0 30 17 * * MON-FRI".

Example:
  go run ./cmd/screener schedule
  go run ./cmd/screener schedule --now`,
	RunE: runSchedule,
}

var scheduleNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also trigger the screen job immediately")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	bars := market.NewStore(cfg.DataDir, log)
	runner := selector.NewRunner(log, cfg.Provider.FetchWorkers)

	httpClient := httputil.New(cfg, log).WithRateLimit(cfg.Provider.RatePerSec, cfg.Provider.Burst)
	provider := quotes.NewClient(httpClient, log, cfg.Provider)

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	reporter := report.New(provider, redis.NewCache(rdb, "screener"), log)

	var sink scheduler.PickSink
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		sink = store.NewPickRepository(db.Pool)
	}

	fetcher := fetch.New(provider, bars, log, fetch.UniverseFilter{
		MinMarketCap:  5e9,
		ExcludeBoards: true,
		AppendixFile:  cfg.AppendixFile,
	}, fetchStart(cfg), cfg.Provider.FetchWorkers)

	sched := scheduler.New(log)
	job := scheduler.NewScreenJob(
		cfg.ScreenSchedule, cfg.SelectorFile,
		fetcher, bars, runner, reporter, sink, log,
	)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if scheduleNow {
		if err := sched.RunNow(job.Name()); err != nil {
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	return nil
}
