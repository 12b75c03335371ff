package liquidity

import "testing"

func steadyDays(n int, volume, price float64) []DayBar {
	days := make([]DayBar, n)
	for i := range days {
		days[i] = DayBar{Open: price, High: price * 1.01, Low: price * 0.99, Close: price, Volume: volume}
	}
	return days
}

func TestEvaluate_TooFewDays(t *testing.T) {
	_, ok := Evaluate("X", steadyDays(60, 100000, 500))
	if ok {
		t.Fatalf("expected rejection for <90 days of history")
	}
}

func TestEvaluate_HighTurnoverSteadyQualifies(t *testing.T) {
	days := steadyDays(90, 4_000_000, 500) // ~Rs 200 Cr/day turnover
	r, ok := Evaluate("X", days)
	if !ok {
		t.Fatalf("expected a result")
	}
	if !r.Qualifies {
		t.Errorf("expected steady high-turnover stock to qualify, got score=%.1f turnover20dCr=%.1f", r.Score, r.Turnover20dCr)
	}
	if r.CircuitHits30d != 0 {
		t.Errorf("circuitHits30d = %d, want 0", r.CircuitHits30d)
	}
}

func TestEvaluate_CircuitHitsDisqualify(t *testing.T) {
	days := steadyDays(90, 4_000_000, 500)
	for i := 85; i < 90; i++ {
		days[i] = DayBar{Open: 500, High: 500 * 1.098, Low: 500, Close: 500, Volume: 4_000_000}
	}
	r, ok := Evaluate("X", days)
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Qualifies {
		t.Errorf("expected repeated circuit-hit days to disqualify the symbol")
	}
	if r.CircuitHits30d < 2 {
		t.Errorf("expected multiple detected circuit hits, got %d", r.CircuitHits30d)
	}
}

func TestEvaluate_LowTurnoverFails(t *testing.T) {
	days := steadyDays(90, 1000, 50) // Rs 50,000/day turnover, far below Rs 10 Cr floor
	r, ok := Evaluate("X", days)
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Qualifies {
		t.Errorf("expected low-turnover stock to fail the gate")
	}
}
