package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/internal/api"
	"github.com/tradebyz/screener/internal/api/handlers"
	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/fetch"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/report"
	"github.com/tradebyz/screener/internal/scheduler"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/internal/store"
	"github.com/tradebyz/screener/pkg/config"
	"github.com/tradebyz/screener/pkg/database"
	"github.com/tradebyz/screener/pkg/httputil"
	"github.com/tradebyz/screener/pkg/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health              - health check
  GET  /api/selectors       - registered strategies and configured entries
  POST /api/screen/run      - run selectors against local data
  GET  /api/picks           - persisted pick reports (requires database)
  GET  /api/jobs            - scheduler job stats (requires --with-scheduler)
  POST /api/jobs/{name}/run - trigger a job now

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "run the daily screen job inside the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
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

	var picks handlers.PickSource
	var sink scheduler.PickSink
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		repo := store.NewPickRepository(db.Pool)
		picks = repo
		sink = repo
	}

	var sched *scheduler.Scheduler
	if serveWithScheduler {
		sched = scheduler.New(log)
		fetcher := fetch.New(provider, bars, log, fetch.UniverseFilter{
			MinMarketCap: 5e9,
			ExcludeBoards: true,
			AppendixFile: cfg.AppendixFile,
		}, fetchStart(cfg), cfg.Provider.FetchWorkers)

		job := scheduler.NewScreenJob(
			cfg.ScreenSchedule, cfg.SelectorFile,
			fetcher, bars, runner, reporter, sink, log,
		)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	screenHandler := handlers.NewScreenHandler(bars, runner, reporter, picks, cfg.SelectorFile, log)
	jobsHandler := handlers.NewJobsHandler(sched)
	server := api.New(cfg, log, api.NewRouter(screenHandler, jobsHandler, log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// fetchStart parses the configured history lower bound, falling back five
// years when it is malformed.
func fetchStart(cfg *config.Config) time.Time {
	if t, err := time.Parse("20060102", cfg.Provider.StartDate); err == nil {
		return market.Day(t)
	}
	return market.Day(time.Now().UTC().AddDate(-5, 0, 0))
}
