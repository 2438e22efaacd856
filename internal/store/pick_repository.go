package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradebyz/screener/internal/selector"
)

// PickRepository persists the outcome of screening runs so a run can be
// replayed or audited against the configuration hash that produced it.
type PickRepository struct {
	pool *pgxpool.Pool
}

func NewPickRepository(pool *pgxpool.Pool) *PickRepository {
	return &PickRepository{pool: pool}
}

// SaveReports replaces the stored reports for the run's trade date in one
// transaction.
func (r *PickRepository) SaveReports(ctx context.Context, configHash string, reports []selector.Report) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin pick save: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO selection.pick_reports (trade_date, alias, strategy, picks, config_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trade_date, alias) DO UPDATE SET
			strategy = EXCLUDED.strategy,
			picks = EXCLUDED.picks,
			config_hash = EXCLUDED.config_hash,
			created_at = NOW()
	`

	for _, report := range reports {
		if _, err := tx.Exec(ctx, query,
			report.TradeDate, report.Alias, report.Strategy, report.Picks, configHash,
		); err != nil {
			return fmt.Errorf("insert pick report %s: %w", report.Alias, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit pick save: %w", err)
	}
	return nil
}

// GetByDate returns every stored report for a trade date in alias order.
func (r *PickRepository) GetByDate(ctx context.Context, date time.Time) ([]selector.Report, error) {
	query := `
		SELECT trade_date, alias, strategy, picks
		FROM selection.pick_reports
		WHERE trade_date = $1
		ORDER BY alias ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query pick reports: %w", err)
	}
	defer rows.Close()

	reports := make([]selector.Report, 0)
	for rows.Next() {
		var report selector.Report
		if err := rows.Scan(&report.TradeDate, &report.Alias, &report.Strategy, &report.Picks); err != nil {
			return nil, fmt.Errorf("scan pick report: %w", err)
		}
		report.TradeDate = report.TradeDate.UTC()
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Get returns one stored report by trade date and alias.
func (r *PickRepository) Get(ctx context.Context, date time.Time, alias string) (*selector.Report, error) {
	query := `
		SELECT trade_date, alias, strategy, picks
		FROM selection.pick_reports
		WHERE trade_date = $1 AND alias = $2
	`

	var report selector.Report
	err := r.pool.QueryRow(ctx, query, date, alias).Scan(
		&report.TradeDate, &report.Alias, &report.Strategy, &report.Picks,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no pick report for %s on %s", alias, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("get pick report: %w", err)
	}
	report.TradeDate = report.TradeDate.UTC()
	return &report, nil
}
