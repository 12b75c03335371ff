package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nseweekly/engine/internal/persistence"
)

// scoreRepo implements persistence.ScoreRepo for PostgreSQL.
type scoreRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScoreRepo creates a new PostgreSQL weekly-score repository.
func NewScoreRepo(db *sqlx.DB, timeout time.Duration) persistence.ScoreRepo {
	return &scoreRepo{db: db, timeout: timeout}
}

func (r *scoreRepo) Upsert(ctx context.Context, score persistence.WeeklyScore) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO weekly_scores
		(symbol, week, regime, momentum_score, consistency_score, consistency_ok,
		 liquidity_score, liquidity_ok)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, week) DO UPDATE SET
			regime = EXCLUDED.regime,
			momentum_score = EXCLUDED.momentum_score,
			consistency_score = EXCLUDED.consistency_score,
			consistency_ok = EXCLUDED.consistency_ok,
			liquidity_score = EXCLUDED.liquidity_score,
			liquidity_ok = EXCLUDED.liquidity_ok,
			calculated_at = now()
		RETURNING calculated_at`

	err := r.db.QueryRowxContext(ctx, query,
		score.Symbol, score.Week, score.Regime, score.MomentumScore,
		score.ConsistencyScore, score.ConsistencyOK, score.LiquidityScore, score.LiquidityOK).
		Scan(&score.CalculatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly score for %s/%s: %w", score.Symbol, score.Week, err)
	}
	return nil
}

func (r *scoreRepo) GetByWeek(ctx context.Context, symbol, week string) (*persistence.WeeklyScore, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var score persistence.WeeklyScore
	err := r.db.GetContext(ctx, &score, `
		SELECT symbol, week, regime, momentum_score, consistency_score, consistency_ok,
		       liquidity_score, liquidity_ok, calculated_at
		FROM weekly_scores WHERE symbol = $1 AND week = $2`, symbol, week)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly score for %s/%s: %w", symbol, week, err)
	}
	return &score, nil
}

func (r *scoreRepo) ListByWeek(ctx context.Context, week string) ([]persistence.WeeklyScore, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var scores []persistence.WeeklyScore
	err := r.db.SelectContext(ctx, &scores, `
		SELECT symbol, week, regime, momentum_score, consistency_score, consistency_ok,
		       liquidity_score, liquidity_ok, calculated_at
		FROM weekly_scores WHERE week = $1 ORDER BY momentum_score DESC`, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly scores for %s: %w", week, err)
	}
	return scores, nil
}

func (r *scoreRepo) ListQualified(ctx context.Context, week string) ([]persistence.WeeklyScore, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var scores []persistence.WeeklyScore
	err := r.db.SelectContext(ctx, &scores, `
		SELECT symbol, week, regime, momentum_score, consistency_score, consistency_ok,
		       liquidity_score, liquidity_ok, calculated_at
		FROM weekly_scores
		WHERE week = $1 AND consistency_ok = true AND liquidity_ok = true
		ORDER BY momentum_score DESC`, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualified scores for %s: %w", week, err)
	}
	return scores, nil
}
