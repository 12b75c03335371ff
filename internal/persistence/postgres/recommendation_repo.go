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

// recommendationRepo implements persistence.RecommendationRepo for PostgreSQL.
type recommendationRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRecommendationRepo creates a new PostgreSQL recommendation repository.
func NewRecommendationRepo(db *sqlx.DB, timeout time.Duration) persistence.RecommendationRepo {
	return &recommendationRepo{db: db, timeout: timeout}
}

func (r *recommendationRepo) Upsert(ctx context.Context, rec persistence.RecommendationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if !isValidStatus(rec.Status) {
		return fmt.Errorf("invalid recommendation status: %s", rec.Status)
	}

	cardsJSON, err := json.Marshal(rec.Cards)
	if err != nil {
		return fmt.Errorf("failed to marshal cards: %w", err)
	}

	query := `
		INSERT INTO recommendations
		(week, market_regime, total_setups, cards, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (week) DO UPDATE SET
			market_regime = EXCLUDED.market_regime,
			total_setups = EXCLUDED.total_setups,
			cards = EXCLUDED.cards,
			status = EXCLUDED.status
		RETURNING created_at`

	err = r.db.QueryRowxContext(ctx, query,
		rec.Week, rec.MarketRegime, rec.TotalSetups, cardsJSON, rec.Status).
		Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert recommendation for %s: %w", rec.Week, err)
	}
	return nil
}

func (r *recommendationRepo) GetByWeek(ctx context.Context, week string) (*persistence.RecommendationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowxContext(ctx, `
		SELECT week, market_regime, total_setups, cards, status, created_at, approved_at, executed_at
		FROM recommendations WHERE week = $1`, week)

	rec, err := scanRecommendation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recommendation for %s: %w", week, err)
	}
	return rec, nil
}

func (r *recommendationRepo) ListRecent(ctx context.Context, limit int) ([]persistence.RecommendationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx, `
		SELECT week, market_regime, total_setups, cards, status, created_at, approved_at, executed_at
		FROM recommendations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent recommendations: %w", err)
	}
	defer rows.Close()

	var recs []persistence.RecommendationRecord
	for rows.Next() {
		rec, err := scanRecommendationFromRows(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (r *recommendationRepo) UpdateStatus(ctx context.Context, week string, status string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if !isValidStatus(status) {
		return fmt.Errorf("invalid recommendation status: %s", status)
	}

	var query string
	switch status {
	case "approved":
		query = `UPDATE recommendations SET status = $2, approved_at = $3 WHERE week = $1`
	case "executed":
		query = `UPDATE recommendations SET status = $2, executed_at = $3 WHERE week = $1`
	default:
		query = `UPDATE recommendations SET status = $2 WHERE week = $1`
	}

	res, err := r.db.ExecContext(ctx, query, week, status, at)
	if err != nil {
		return fmt.Errorf("failed to update recommendation status for %s: %w", week, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no recommendation found for week %s", week)
	}
	return nil
}

func isValidStatus(status string) bool {
	switch status {
	case "draft", "approved", "executed", "expired":
		return true
	}
	return false
}

func scanRecommendation(row *sqlx.Row) (*persistence.RecommendationRecord, error) {
	var rec persistence.RecommendationRecord
	var cardsJSON []byte
	if err := row.Scan(&rec.Week, &rec.MarketRegime, &rec.TotalSetups, &cardsJSON,
		&rec.Status, &rec.CreatedAt, &rec.ApprovedAt, &rec.ExecutedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cardsJSON, &rec.Cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cards: %w", err)
	}
	return &rec, nil
}

func scanRecommendationFromRows(rows *sqlx.Rows) (*persistence.RecommendationRecord, error) {
	var rec persistence.RecommendationRecord
	var cardsJSON []byte
	if err := rows.Scan(&rec.Week, &rec.MarketRegime, &rec.TotalSetups, &cardsJSON,
		&rec.Status, &rec.CreatedAt, &rec.ApprovedAt, &rec.ExecutedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cardsJSON, &rec.Cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cards: %w", err)
	}
	return &rec, nil
}
