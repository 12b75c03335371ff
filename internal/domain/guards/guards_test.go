package guards

import (
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func TestEvaluateFatigueGuard_BlocksOverextended(t *testing.T) {
	cfg := DefaultGuardConfig().Fatigue
	result := EvaluateFatigueGuard(FatigueInputs{
		Symbol: "X", MomentumScore: 96, RSI14: 82, Acceleration: 1, Regime: config.RegimeRiskOff,
	}, cfg, true)

	if result.Allow {
		t.Fatalf("expected overextended setup to be blocked, got allow with reason %q", result.Reason)
	}
}

func TestEvaluateFatigueGuard_AccelerationOverrideAllows(t *testing.T) {
	cfg := DefaultGuardConfig().Fatigue
	result := EvaluateFatigueGuard(FatigueInputs{
		Symbol: "X", MomentumScore: 96, RSI14: 82, Acceleration: 10, Regime: config.RegimeRiskOff,
	}, cfg, true)

	if !result.Allow {
		t.Fatalf("expected acceleration override to allow entry, got blocked: %q", result.Reason)
	}
}

func TestEvaluateFreshnessGuard_BlocksStaleData(t *testing.T) {
	cfg := DefaultGuardConfig().Freshness
	result := EvaluateFreshnessGuard(FreshnessInputs{
		Symbol: "X", DaysAge: 10, Regime: config.RegimeChoppy,
	}, cfg, true)

	if result.Allow {
		t.Fatalf("expected stale data to be blocked, got allow")
	}
}

func TestEvaluator_EvaluateAll_BothPass(t *testing.T) {
	eval := NewEvaluator(DefaultGuardConfig())
	result := eval.EvaluateAll(AllGuardsInputs{
		Fatigue:   FatigueInputs{Symbol: "X", MomentumScore: 60, RSI14: 55, Regime: config.RegimeRiskOn},
		Freshness: FreshnessInputs{Symbol: "X", DaysAge: 1, Regime: config.RegimeRiskOn},
	})

	if !result.AllowEntry {
		t.Fatalf("expected both guards to pass, got blocked by %q: %q", result.BlockedBy, result.BlockReason)
	}
}

func TestEvaluator_EvaluateAll_ReportsFirstBlocker(t *testing.T) {
	eval := NewEvaluator(DefaultGuardConfig())
	result := eval.EvaluateAll(AllGuardsInputs{
		Fatigue:   FatigueInputs{Symbol: "X", MomentumScore: 99, RSI14: 90, Regime: config.RegimeRiskOff},
		Freshness: FreshnessInputs{Symbol: "X", DaysAge: 1, Regime: config.RegimeRiskOff},
	})

	if result.AllowEntry || result.BlockedBy != "fatigue" {
		t.Fatalf("expected fatigue to be reported as blocker, got allow=%v blockedBy=%q", result.AllowEntry, result.BlockedBy)
	}
}
