package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nseweekly/engine/internal/persistence"
)

// barRepo implements persistence.BarRepo for PostgreSQL.
type barRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewBarRepo creates a new PostgreSQL daily-bar repository.
func NewBarRepo(db *sqlx.DB, timeout time.Duration) persistence.BarRepo {
	return &barRepo{db: db, timeout: timeout}
}

// InsertBatch upserts a batch of daily bars atomically, keyed on (symbol, date).
func (r *barRepo) InsertBatch(ctx context.Context, bars []persistence.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(bars)/500+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_bars (symbol, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			close = EXCLUDED.close, volume = EXCLUDED.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if bar.High < bar.Low {
			return fmt.Errorf("invalid bar for %s on %s: high %.2f below low %.2f", bar.Symbol, bar.Date.Format("2006-01-02"), bar.High, bar.Low)
		}
		if _, err := stmt.ExecContext(ctx, bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			return fmt.Errorf("failed to insert bar for %s: %w", bar.Symbol, err)
		}
	}

	return tx.Commit()
}

func (r *barRepo) ListBySymbol(ctx context.Context, symbol string, tr persistence.TimeRange) ([]persistence.DailyBar, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var bars []persistence.DailyBar
	err := r.db.SelectContext(ctx, &bars, `
		SELECT symbol, date, open, high, low, close, volume, created_at
		FROM daily_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`, symbol, tr.From, tr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list bars for %s: %w", symbol, err)
	}
	return bars, nil
}

func (r *barRepo) LatestDate(ctx context.Context, symbol string) (*time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var date time.Time
	err := r.db.GetContext(ctx, &date, `SELECT MAX(date) FROM daily_bars WHERE symbol = $1`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest bar date for %s: %w", symbol, err)
	}
	if date.IsZero() {
		return nil, nil
	}
	return &date, nil
}
