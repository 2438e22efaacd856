package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/report"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/internal/store"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/database"
	"github.com/tradebyz/screener/pkg/httputil"
	"github.com/tradebyz/screener/pkg/redis"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run configured selectors against local bar data",
	Long: `Runs every activated selector from the config file against the
local bar store and prints the pick reports.

Example:
  go run ./cmd/screener select
  go run ./cmd/screener select --date 2024-06-03 --enrich`,
	RunE: runSelect,
}

var (
	selectDate   string
	selectEnrich bool
	selectFromDB bool
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectDate, "date", "", "trade date YYYY-MM-DD (default: latest)")
	selectCmd.Flags().BoolVar(&selectEnrich, "enrich", false, "look up issuer profiles for picks")
	selectCmd.Flags().BoolVar(&selectFromDB, "from-db", false, "read bar history from PostgreSQL instead of the data dir")
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	selectors, err := strategyconfig.Load(cfg.SelectorFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var universe market.Universe
	if selectFromDB {
		if !cfg.Database.Enabled {
			return fmt.Errorf("--from-db requires DB_ENABLED=true")
		}
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := store.NewPriceRepository(db.Pool)
		codes, err := repo.Codes(ctx)
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return fmt.Errorf("no bar data in database, run fetch first")
		}
		if universe, err = repo.LoadUniverse(ctx, codes); err != nil {
			return err
		}
	} else {
		barStore := market.NewStore(cfg.DataDir, log)
		codes, err := barStore.Codes()
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return fmt.Errorf("no bar data in %s, run fetch first", cfg.DataDir)
		}
		if universe, err = barStore.LoadUniverse(codes); err != nil {
			return err
		}
	}

	tradeDate := market.Day(time.Now().UTC())
	if selectDate != "" {
		parsed, err := time.Parse("2006-01-02", selectDate)
		if err != nil {
			return fmt.Errorf("bad --date %q, want YYYY-MM-DD", selectDate)
		}
		tradeDate = market.Day(parsed)
	}

	runner := selector.NewRunner(log, cfg.Provider.FetchWorkers)
	reports, err := runner.Run(ctx, selectors, tradeDate, universe)
	if err != nil {
		return err
	}

	var provider report.ProfileProvider
	var cache *redis.Cache
	if selectEnrich {
		httpClient := httputil.New(cfg, log).WithRateLimit(cfg.Provider.RatePerSec, cfg.Provider.Burst)
		provider = quotes.NewClient(httpClient, log, cfg.Provider)

		rdb, err := redis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, profiles uncached")
		} else {
			defer rdb.Close()
			cache = redis.NewCache(rdb, "screener")
		}
	}

	reporter := report.New(provider, cache, log)
	for _, block := range reporter.Log(reporter.Enrich(ctx, reports)) {
		fmt.Print(block)
	}
	return nil
}
