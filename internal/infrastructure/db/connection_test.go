package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nseweekly/engine/internal/infrastructure/db"
)

func TestDefaultConfig(t *testing.T) {
	config := db.DefaultConfig()

	assert.Equal(t, 10, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, config.ConnMaxIdleTime)
	assert.Equal(t, 30*time.Second, config.QueryTimeout)
	assert.False(t, config.Enabled)
}

func TestNewManager_Disabled(t *testing.T) {
	manager, err := db.NewManager(db.Config{Enabled: false})
	require.NoError(t, err)

	assert.NotNil(t, manager)
	assert.False(t, manager.IsEnabled())
	assert.Nil(t, manager.Repository())
	assert.Nil(t, manager.DB())

	healthCheck := manager.Health().Health(context.Background())
	assert.True(t, healthCheck.Healthy)
	assert.Contains(t, healthCheck.Errors[0], "disabled")
}

func TestNewManager_MissingDSN(t *testing.T) {
	_, err := db.NewManager(db.Config{Enabled: true, DSN: ""})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}

func TestSqlxPing_MockFailureReturnsError(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	_ = sqlxDB

	pingExpectation := mock.ExpectPing()
	pingExpectation.WillReturnError(sqlmock.ErrCancelled)

	err = sqlxDB.PingContext(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Close_Disabled(t *testing.T) {
	manager, err := db.NewManager(db.Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, manager.Close())
}
