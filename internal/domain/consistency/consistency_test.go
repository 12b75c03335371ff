package consistency

import (
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func steadyReturns(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			out[i] = base + 0.01
		} else {
			out[i] = base
		}
	}
	return out
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Consistency
	_, ok := Evaluate("X", make([]float64, 10), 80, band)
	if ok {
		t.Fatalf("expected insufficient-history rejection for <40 weeks")
	}
}

func TestEvaluate_ConsistentUptrendQualifies(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Consistency
	returns := steadyReturns(52, 0.025)
	r, ok := Evaluate("X", returns, 85, band)
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.PosPct < band.PosPctMin {
		t.Errorf("posPct = %.2f below min %.2f", r.PosPct, band.PosPctMin)
	}
	if r.ChecksPassed < 5 {
		t.Errorf("checksPassed = %d, want >=5 for a consistent uptrend series", r.ChecksPassed)
	}
}

func TestEvaluate_ChoppyReturnsFailSignificance(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeChoppy).Consistency
	returns := make([]float64, 52)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}
	r, ok := Evaluate("X", returns, 50, band)
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Qualifies {
		t.Errorf("alternating +/- returns at exactly 50%% positive should not clear the binomial significance test")
	}
}
