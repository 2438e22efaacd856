package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/fetch"
	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/store"
	"github.com/tradebyz/screener/pkg/config"
	"github.com/tradebyz/screener/pkg/database"
	"github.com/tradebyz/screener/pkg/httputil"
	"github.com/tradebyz/screener/pkg/logger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Sync local bar data with the quote provider",
	Long: `Builds the instrument universe from the provider's market snapshot
(market-cap filtered, plus the appendix list) and fetches the missing
daily bars for each instrument into the data directory.

Example:
  go run ./cmd/screener fetch
  go run ./cmd/screener fetch --min-mktcap 5e9 --workers 5`,
	RunE: runFetch,
}

var (
	fetchMinCap        float64
	fetchMaxCap        float64
	fetchIncludeBoards bool
	fetchWorkers       int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Float64Var(&fetchMinCap, "min-mktcap", 5e9, "minimum total market cap, yuan")
	fetchCmd.Flags().Float64Var(&fetchMaxCap, "max-mktcap", 0, "maximum total market cap, yuan (0 = unbounded)")
	fetchCmd.Flags().BoolVar(&fetchIncludeBoards, "include-boards", false, "keep ChiNext/STAR/NEEQ listings")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "fetch concurrency (default from FETCH_WORKERS)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	startDate, err := time.Parse("20060102", cfg.Provider.StartDate)
	if err != nil {
		return fmt.Errorf("bad FETCH_START_DATE %q, want YYYYMMDD", cfg.Provider.StartDate)
	}

	workers := cfg.Provider.FetchWorkers
	if fetchWorkers > 0 {
		workers = fetchWorkers
	}

	httpClient := httputil.New(cfg, log).WithRateLimit(cfg.Provider.RatePerSec, cfg.Provider.Burst)
	provider := quotes.NewClient(httpClient, log, cfg.Provider)
	barStore := market.NewStore(cfg.DataDir, log)

	fetcher := fetch.New(provider, barStore, log, fetch.UniverseFilter{
		MinMarketCap:  fetchMinCap,
		MaxMarketCap:  fetchMaxCap,
		ExcludeBoards: !fetchIncludeBoards,
		AppendixFile:  cfg.AppendixFile,
	}, market.Day(startDate), workers)

	ctx := context.Background()
	codes, err := fetcher.Universe(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	stats := fetcher.Sync(ctx, codes, market.Day(time.Now().UTC()))

	fmt.Printf("universe: %d  updated: %d  fresh: %d  failed: %d\n",
		stats.Total, stats.Updated, stats.Fresh, len(stats.Failed))
	if len(stats.Failed) > 0 {
		fmt.Printf("failed codes: %v\n", stats.Failed)
	}

	if cfg.Database.Enabled {
		if err := mirrorToDatabase(ctx, cfg, log, barStore, codes); err != nil {
			return fmt.Errorf("mirror to database: %w", err)
		}
	}
	return nil
}

// mirrorToDatabase upserts the local bar history into Postgres so that
// SQL consumers see the same data the CSV store holds.
func mirrorToDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger, bars *market.Store, codes []string) error {
	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewPriceRepository(db.Pool)
	saved := 0
	for _, code := range codes {
		s, err := bars.Load(code)
		if err != nil || s.Len() == 0 {
			continue
		}
		if last, ok, err := repo.LatestDate(ctx, code); err == nil && ok && !last.Before(s.LastDate()) {
			continue
		}
		if err := repo.SaveBars(ctx, code, s.Bars); err != nil {
			return fmt.Errorf("save %s: %w", code, err)
		}
		saved++
	}
	log.WithField("codes", saved).Info("Bar history mirrored to database")
	return nil
}
