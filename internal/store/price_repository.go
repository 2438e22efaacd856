// Package store persists daily bars and pick reports in PostgreSQL. The
// CSV store in internal/market remains the default backend; this package
// is used when DB_ENABLED is set.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradebyz/screener/internal/market"
)

// PriceRepository reads and writes daily bars.
type PriceRepository struct {
	pool *pgxpool.Pool
}

func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// SaveBars upserts bars for one instrument in a single batch round trip.
func (r *PriceRepository) SaveBars(ctx context.Context, code string, bars []market.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.daily_bars (stock_code, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, code, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save bars for %s: %w", code, err)
		}
	}
	return nil
}

// GetSeries loads the full history of one instrument in ascending order.
func (r *PriceRepository) GetSeries(ctx context.Context, code string) (*market.Series, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_bars
		WHERE stock_code = $1
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", code, err)
	}
	defer rows.Close()

	var bars []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", code, err)
		}
		b.Date = b.Date.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars for %s: %w", code, err)
	}

	s := &market.Series{Code: code, Bars: bars}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LatestDate returns the newest stored bar date for code, or ok=false when
// the instrument has no bars yet.
func (r *PriceRepository) LatestDate(ctx context.Context, code string) (time.Time, bool, error) {
	var d time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT trade_date FROM data.daily_bars WHERE stock_code = $1 ORDER BY trade_date DESC LIMIT 1`,
		code,
	).Scan(&d)
	if err == pgx.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest date for %s: %w", code, err)
	}
	return d.UTC(), true, nil
}

// Codes returns every instrument with at least one stored bar.
func (r *PriceRepository) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT stock_code FROM data.daily_bars ORDER BY stock_code ASC`)
	if err != nil {
		return nil, fmt.Errorf("query codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// LoadUniverse loads full histories for the given codes. Codes with no
// stored bars are skipped; a structurally invalid history aborts.
func (r *PriceRepository) LoadUniverse(ctx context.Context, codes []string) (market.Universe, error) {
	universe := make(market.Universe, len(codes))
	for _, code := range codes {
		s, err := r.GetSeries(ctx, code)
		if err != nil {
			return nil, err
		}
		if s.Len() == 0 {
			continue
		}
		universe[code] = s
	}
	return universe, nil
}
