package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nseweekly/engine/internal/persistence"
)

// setupRepo implements persistence.SetupRepo for PostgreSQL.
type setupRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSetupRepo creates a new PostgreSQL trade-setup repository.
func NewSetupRepo(db *sqlx.DB, timeout time.Duration) persistence.SetupRepo {
	return &setupRepo{db: db, timeout: timeout}
}

func (r *setupRepo) Upsert(ctx context.Context, setup persistence.SetupRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO setups
		(symbol, week, setup_type, entry_low, entry_high, stop, stop_method,
		 target1, target2, rr, quality_composite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, week) DO UPDATE SET
			setup_type = EXCLUDED.setup_type,
			entry_low = EXCLUDED.entry_low,
			entry_high = EXCLUDED.entry_high,
			stop = EXCLUDED.stop,
			stop_method = EXCLUDED.stop_method,
			target1 = EXCLUDED.target1,
			target2 = EXCLUDED.target2,
			rr = EXCLUDED.rr,
			quality_composite = EXCLUDED.quality_composite,
			calculated_at = now()
		RETURNING calculated_at`

	err := r.db.QueryRowxContext(ctx, query,
		setup.Symbol, setup.Week, setup.SetupType, setup.EntryLow, setup.EntryHigh,
		setup.Stop, setup.StopMethod, setup.Target1, setup.Target2, setup.RR, setup.QualityComposite).
		Scan(&setup.CalculatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setup for %s/%s: %w", setup.Symbol, setup.Week, err)
	}
	return nil
}

func (r *setupRepo) ListByWeek(ctx context.Context, week string) ([]persistence.SetupRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var setups []persistence.SetupRecord
	err := r.db.SelectContext(ctx, &setups, `
		SELECT symbol, week, setup_type, entry_low, entry_high, stop, stop_method,
		       target1, target2, rr, quality_composite, calculated_at
		FROM setups WHERE week = $1 ORDER BY quality_composite DESC`, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list setups for %s: %w", week, err)
	}
	return setups, nil
}
