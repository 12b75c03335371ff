package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRange_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tr    TimeRange
		valid bool
	}{
		{
			name: "valid_range",
			tr: TimeRange{
				From: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC),
			},
			valid: true,
		},
		{
			name: "same_day",
			tr: TimeRange{
				From: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.tr)
			if tt.valid {
				assert.True(t, tt.tr.To.After(tt.tr.From) || tt.tr.To.Equal(tt.tr.From))
			}
		})
	}
}

func TestInstrument_Validation(t *testing.T) {
	inst := Instrument{
		Symbol:         "RELIANCE",
		ISIN:           "INE002A01018",
		Name:           "Reliance Industries",
		Sector:         "Energy",
		Segment:        "EQ",
		InstrumentType: "EQUITY",
		LotSize:        1,
		TickSize:       0.05,
		Tier:           "A",
		MTFEligible:    true,
		UpdatedAt:      time.Now(),
	}

	t.Run("valid_instrument", func(t *testing.T) {
		assert.Equal(t, "RELIANCE", inst.Symbol)
		assert.Equal(t, "A", inst.Tier)
		assert.Greater(t, inst.TickSize, 0.0)
		assert.Greater(t, inst.LotSize, 0)
	})

	t.Run("valid_tiers", func(t *testing.T) {
		validTiers := []string{"A", "B", "C", "D"}
		for _, tier := range validTiers {
			copy := inst
			copy.Tier = tier
			assert.Contains(t, validTiers, copy.Tier)
		}
	})
}

func TestDailyBar_OHLCInvariant(t *testing.T) {
	bar := DailyBar{
		Symbol: "RELIANCE",
		Date:   time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC),
		Open:   2850, High: 2890, Low: 2840, Close: 2875, Volume: 1_200_000,
	}

	assert.GreaterOrEqual(t, bar.High, bar.Open)
	assert.GreaterOrEqual(t, bar.High, bar.Close)
	assert.LessOrEqual(t, bar.Low, bar.Open)
	assert.LessOrEqual(t, bar.Low, bar.Close)
	assert.Greater(t, bar.Volume, 0.0)
}

func TestWeeklyScore_Validation(t *testing.T) {
	score := WeeklyScore{
		Symbol:           "RELIANCE",
		Week:             "2026-W30",
		Regime:           "RISK_ON",
		MomentumScore:    78.5,
		ConsistencyScore: 81.2,
		ConsistencyOK:    true,
		LiquidityScore:   88.0,
		LiquidityOK:      true,
		CalculatedAt:     time.Now(),
	}

	t.Run("valid_score", func(t *testing.T) {
		assert.Equal(t, "2026-W30", score.Week)
		assert.GreaterOrEqual(t, score.MomentumScore, 0.0)
		assert.LessOrEqual(t, score.MomentumScore, 100.0)
		assert.True(t, score.ConsistencyOK)
		assert.True(t, score.LiquidityOK)
	})

	t.Run("valid_regimes", func(t *testing.T) {
		validRegimes := []string{"RISK_ON", "CHOPPY", "RISK_OFF"}
		for _, regime := range validRegimes {
			copy := score
			copy.Regime = regime
			assert.Contains(t, validRegimes, copy.Regime)
		}
	})
}

func TestSetupRecord_RiskRewardInvariant(t *testing.T) {
	setup := SetupRecord{
		Symbol: "RELIANCE", Week: "2026-W30", SetupType: "pullback",
		EntryLow: 2840, EntryHigh: 2860, Stop: 2790,
		Target1: 2980, Target2: 3020, RR: 2.4,
		QualityComposite: 72.0,
		CalculatedAt:     time.Now(),
	}

	require.Greater(t, setup.EntryLow, setup.Stop)
	assert.GreaterOrEqual(t, setup.RR, 0.0)
	assert.Greater(t, setup.Target1, setup.EntryHigh)
}

func TestRecommendationRecord_LifecycleStatuses(t *testing.T) {
	rec := RecommendationRecord{
		Week:         "2026-W30",
		MarketRegime: "RISK_ON",
		TotalSetups:  4,
		Cards:        map[string]interface{}{"count": 4},
		Status:       "draft",
		CreatedAt:    time.Now(),
	}

	validStatuses := []string{"draft", "approved", "executed", "expired"}
	assert.Contains(t, validStatuses, rec.Status)
	assert.Nil(t, rec.ApprovedAt)
}

func TestHealthCheck_Structure(t *testing.T) {
	healthCheck := HealthCheck{
		Healthy: true,
		Errors:  []string{},
		ConnectionPool: map[string]int{
			"active": 5,
			"idle":   10,
			"max":    20,
		},
		LastCheck:      time.Now(),
		ResponseTimeMS: 45,
	}

	t.Run("valid_health_check", func(t *testing.T) {
		assert.True(t, healthCheck.Healthy)
		assert.Empty(t, healthCheck.Errors)
		assert.Contains(t, healthCheck.ConnectionPool, "active")
		assert.Greater(t, healthCheck.ResponseTimeMS, int64(0))
	})
}
