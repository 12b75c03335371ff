package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nseweekly/engine/internal/persistence"
)

// instrumentRepo implements persistence.InstrumentRepo for PostgreSQL.
type instrumentRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewInstrumentRepo creates a new PostgreSQL instrument repository.
func NewInstrumentRepo(db *sqlx.DB, timeout time.Duration) persistence.InstrumentRepo {
	return &instrumentRepo{db: db, timeout: timeout}
}

func (r *instrumentRepo) Upsert(ctx context.Context, inst persistence.Instrument) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO instruments
		(symbol, isin, name, sector, segment, instrument_type, lot_size, tick_size, tier, mtf_eligible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol) DO UPDATE SET
			isin = EXCLUDED.isin,
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			segment = EXCLUDED.segment,
			instrument_type = EXCLUDED.instrument_type,
			lot_size = EXCLUDED.lot_size,
			tick_size = EXCLUDED.tick_size,
			tier = EXCLUDED.tier,
			mtf_eligible = EXCLUDED.mtf_eligible,
			updated_at = now()
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		inst.Symbol, inst.ISIN, inst.Name, inst.Sector, inst.Segment,
		inst.InstrumentType, inst.LotSize, inst.TickSize, inst.Tier, inst.MTFEligible).
		Scan(&inst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", inst.Symbol, err)
	}
	return nil
}

func (r *instrumentRepo) UpsertBatch(ctx context.Context, insts []persistence.Instrument) error {
	if len(insts) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(insts)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO instruments
		(symbol, isin, name, sector, segment, instrument_type, lot_size, tick_size, tier, mtf_eligible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol) DO UPDATE SET
			isin = EXCLUDED.isin, name = EXCLUDED.name, sector = EXCLUDED.sector,
			segment = EXCLUDED.segment, instrument_type = EXCLUDED.instrument_type,
			lot_size = EXCLUDED.lot_size, tick_size = EXCLUDED.tick_size,
			tier = EXCLUDED.tier, mtf_eligible = EXCLUDED.mtf_eligible, updated_at = now()`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, inst := range insts {
		if _, err := stmt.ExecContext(ctx,
			inst.Symbol, inst.ISIN, inst.Name, inst.Sector, inst.Segment,
			inst.InstrumentType, inst.LotSize, inst.TickSize, inst.Tier, inst.MTFEligible); err != nil {
			return fmt.Errorf("failed to upsert instrument %s: %w", inst.Symbol, err)
		}
	}

	return tx.Commit()
}

func (r *instrumentRepo) Get(ctx context.Context, symbol string) (*persistence.Instrument, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var inst persistence.Instrument
	err := r.db.GetContext(ctx, &inst, `
		SELECT symbol, isin, name, sector, segment, instrument_type, lot_size, tick_size, tier, mtf_eligible, updated_at
		FROM instruments WHERE symbol = $1`, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get instrument %s: %w", symbol, err)
	}
	return &inst, nil
}

func (r *instrumentRepo) ListByTier(ctx context.Context, tier string) ([]persistence.Instrument, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var insts []persistence.Instrument
	err := r.db.SelectContext(ctx, &insts, `
		SELECT symbol, isin, name, sector, segment, instrument_type, lot_size, tick_size, tier, mtf_eligible, updated_at
		FROM instruments WHERE tier = $1 ORDER BY symbol`, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments by tier %s: %w", tier, err)
	}
	return insts, nil
}

func (r *instrumentRepo) ListAll(ctx context.Context) ([]persistence.Instrument, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var insts []persistence.Instrument
	err := r.db.SelectContext(ctx, &insts, `
		SELECT symbol, isin, name, sector, segment, instrument_type, lot_size, tick_size, tier, mtf_eligible, updated_at
		FROM instruments ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return insts, nil
}
