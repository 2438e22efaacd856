package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/database"
	"github.com/tradebyz/screener/pkg/redis"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show environment and data status",
	Long: `Prints the effective configuration, local data coverage, and the
health of optional backing services (PostgreSQL, Redis).

Example:
  go run ./cmd/screener status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("=== Screener Status ===")
	fmt.Printf("%-15s %s\n", "Env:", cfg.Env)
	fmt.Printf("%-15s %s\n", "Port:", cfg.Port)
	fmt.Printf("%-15s %s\n", "Data dir:", cfg.DataDir)
	fmt.Printf("%-15s %s\n", "Selector file:", cfg.SelectorFile)
	fmt.Printf("%-15s %s\n", "Screen cron:", cfg.ScreenSchedule)
	fmt.Println()

	bars := market.NewStore(cfg.DataDir, log)
	codes, err := bars.Codes()
	if err != nil {
		fmt.Printf("Local data:     unavailable (%v)\n", err)
	} else {
		fmt.Printf("%-15s %d codes\n", "Local data:", len(codes))
		if len(codes) > 0 {
			if s, err := bars.Load(codes[0]); err == nil && s.Len() > 0 {
				fmt.Printf("%-15s %s (%s)\n", "Sample:", s.Code, s.LastDate().Format("2006-01-02"))
			}
		}
	}

	if selectors, err := strategyconfig.Load(cfg.SelectorFile); err != nil {
		fmt.Printf("%-15s unavailable (%v)\n", "Selectors:", err)
	} else {
		active := 0
		for _, sel := range selectors {
			if sel.Active() {
				active++
			}
		}
		fmt.Printf("%-15s %d configured, %d active\n", "Selectors:", len(selectors), active)
	}
	fmt.Println()

	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			fmt.Printf("%-15s unreachable (%v)\n", "PostgreSQL:", err)
		} else {
			defer db.Close()
			if hs, err := db.HealthCheck(ctx); err != nil {
				fmt.Printf("%-15s unhealthy (%s)\n", "PostgreSQL:", hs.Error)
			} else {
				fmt.Printf("%-15s healthy, %v, conns %d/%d\n",
					"PostgreSQL:", hs.ResponseTime, hs.TotalConns, hs.MaxConns)
			}
		}
	} else {
		fmt.Printf("%-15s disabled\n", "PostgreSQL:")
	}

	if cfg.Redis.Enabled {
		rdb, err := redis.New(cfg)
		if err != nil {
			fmt.Printf("%-15s unreachable (%v)\n", "Redis:", err)
		} else {
			defer rdb.Close()
			if err := rdb.Ping(ctx); err != nil {
				fmt.Printf("%-15s unhealthy (%v)\n", "Redis:", err)
			} else {
				fmt.Printf("%-15s healthy\n", "Redis:")
			}
		}
	} else {
		fmt.Printf("%-15s disabled\n", "Redis:")
	}

	return nil
}
