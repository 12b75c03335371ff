package orchestration

import (
	"testing"
	"time"

	"github.com/nseweekly/engine/internal/domain"
)

func TestPercentileRanks(t *testing.T) {
	scores := map[string]float64{"A": 10, "B": 30, "C": 20}
	ranks := percentileRanks(scores)

	if ranks["A"] != 0 {
		t.Fatalf("expected lowest score to rank 0, got %v", ranks["A"])
	}
	if ranks["B"] != 1 {
		t.Fatalf("expected highest score to rank 1, got %v", ranks["B"])
	}
	if ranks["C"] <= ranks["A"] || ranks["C"] >= ranks["B"] {
		t.Fatalf("expected middle score to rank between the other two, got %v", ranks["C"])
	}
}

func TestPercentileRanks_SingleSymbol(t *testing.T) {
	ranks := percentileRanks(map[string]float64{"A": 42})
	if ranks["A"] != 1 {
		t.Fatalf("expected sole symbol to rank 1, got %v", ranks["A"])
	}
}

func TestPctReturn(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 110}
	got := pctReturn(closes, 1)
	want := (110.0 - 103.0) / 103.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("pctReturn(1) = %v, want %v", got, want)
	}
}

func TestPctReturn_InsufficientHistory(t *testing.T) {
	if got := pctReturn([]float64{100}, 5); got != 0 {
		t.Fatalf("expected 0 for too-short series, got %v", got)
	}
}

func TestHigh52Low52(t *testing.T) {
	bars := make([]domain.DailyBar, 0, 300)
	for i := 0; i < 300; i++ {
		bars = append(bars, domain.DailyBar{High: float64(100 + i), Low: float64(90 + i)})
	}
	high, low := high52Low52(bars)
	if high != bars[len(bars)-1].High {
		t.Fatalf("expected high to be the last bar's high, got %v", high)
	}
	if low != bars[len(bars)-tradingDaysYear].Low {
		t.Fatalf("expected low to be the window's floor, got %v", low)
	}
}

func TestAcceleration_ClampsToUnitRange(t *testing.T) {
	if got := acceleration(1.0, 0.0); got != 1 {
		t.Fatalf("expected acceleration to clamp at 1, got %v", got)
	}
	if got := acceleration(-1.0, 0.0); got != 0 {
		t.Fatalf("expected acceleration to clamp at 0, got %v", got)
	}
}

func TestWeeklyReturns(t *testing.T) {
	weeks := []domain.WeeklyBar{
		{Close: 100, Week: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Close: 110, Week: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)},
		{Close: 99, Week: time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)},
	}
	returns := weeklyReturns(weeks)
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns from 3 weeks, got %d", len(returns))
	}
	if diff := returns[0] - 0.10; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected first return 0.10, got %v", returns[0])
	}
}
