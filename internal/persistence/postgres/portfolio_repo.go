package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nseweekly/engine/internal/persistence"
)

// portfolioRepo implements persistence.PortfolioRepo for PostgreSQL.
type portfolioRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPortfolioRepo creates a new PostgreSQL portfolio repository.
func NewPortfolioRepo(db *sqlx.DB, timeout time.Duration) persistence.PortfolioRepo {
	return &portfolioRepo{db: db, timeout: timeout}
}

func (r *portfolioRepo) Upsert(ctx context.Context, p persistence.PortfolioRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	positionsJSON, err := json.Marshal(p.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	sectorJSON, err := json.Marshal(p.SectorAllocation)
	if err != nil {
		return fmt.Errorf("failed to marshal sector allocation: %w", err)
	}

	query := `
		INSERT INTO portfolios
		(week, positions, sector_allocation, allocated_pct, cash_pct, total_risk_pct)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (week) DO UPDATE SET
			positions = EXCLUDED.positions,
			sector_allocation = EXCLUDED.sector_allocation,
			allocated_pct = EXCLUDED.allocated_pct,
			cash_pct = EXCLUDED.cash_pct,
			total_risk_pct = EXCLUDED.total_risk_pct
		RETURNING created_at`

	err = r.db.QueryRowxContext(ctx, query,
		p.Week, positionsJSON, sectorJSON, p.AllocatedPct, p.CashPct, p.TotalRiskPct).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio for %s: %w", p.Week, err)
	}
	return nil
}

func (r *portfolioRepo) GetByWeek(ctx context.Context, week string) (*persistence.PortfolioRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowxContext(ctx, `
		SELECT week, positions, sector_allocation, allocated_pct, cash_pct, total_risk_pct, created_at
		FROM portfolios WHERE week = $1`, week)

	var p persistence.PortfolioRecord
	var positionsJSON, sectorJSON []byte
	err := row.Scan(&p.Week, &positionsJSON, &sectorJSON, &p.AllocatedPct, &p.CashPct, &p.TotalRiskPct, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio for %s: %w", week, err)
	}

	if err := json.Unmarshal(positionsJSON, &p.Positions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions: %w", err)
	}
	if err := json.Unmarshal(sectorJSON, &p.SectorAllocation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sector allocation: %w", err)
	}

	return &p, nil
}
