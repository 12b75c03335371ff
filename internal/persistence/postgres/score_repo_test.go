package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nseweekly/engine/internal/persistence"
)

func TestScoreRepo_Upsert(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	repo := NewScoreRepo(sqlxDB, 5*time.Second)

	mock.ExpectQuery("INSERT INTO weekly_scores").
		WithArgs("RELIANCE", "2026-W30", "RISK_ON", 78.5, 81.2, true, 88.0, true).
		WillReturnRows(sqlmock.NewRows([]string{"calculated_at"}).AddRow(time.Now()))

	err = repo.Upsert(context.Background(), persistence.WeeklyScore{
		Symbol: "RELIANCE", Week: "2026-W30", Regime: "RISK_ON",
		MomentumScore: 78.5, ConsistencyScore: 81.2, ConsistencyOK: true,
		LiquidityScore: 88.0, LiquidityOK: true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
