package guards

// Evaluator orchestrates fatigue and freshness guard evaluation with
// regime awareness.
type Evaluator struct {
	config      GuardConfig
	regimeAware bool
}

// NewEvaluator creates a new guard evaluator.
func NewEvaluator(config GuardConfig) *Evaluator {
	return &Evaluator{config: config, regimeAware: config.RegimeAware}
}

// EvaluateAll runs both guards and returns the combined result. Guards
// are checked in fatigue-then-freshness order so the blocked-by reason
// is deterministic when both would otherwise fail.
func (e *Evaluator) EvaluateAll(inputs AllGuardsInputs) AllGuardsResult {
	fatigueResult := EvaluateFatigueGuard(inputs.Fatigue, e.config.Fatigue, e.regimeAware)
	freshnessResult := EvaluateFreshnessGuard(inputs.Freshness, e.config.Freshness, e.regimeAware)

	guardResults := map[string]GuardResult{
		"fatigue":   fatigueResult,
		"freshness": freshnessResult,
	}

	allowEntry := fatigueResult.Allow && freshnessResult.Allow

	var blockReason, blockedBy, profile string
	regime := fatigueResult.Regime

	if !allowEntry {
		ordered := []struct {
			name   string
			result GuardResult
		}{
			{"fatigue", fatigueResult},
			{"freshness", freshnessResult},
		}
		for _, g := range ordered {
			if !g.result.Allow {
				blockReason = g.result.Reason
				blockedBy = g.name
				profile = g.result.Profile
				regime = g.result.Regime
				break
			}
		}
	} else {
		blockReason = "all_guards_passed"
		profile = "baseline"
		if fatigueResult.Profile == "risk_on" || freshnessResult.Profile == "risk_on" {
			profile = "risk_on"
		}
	}

	return AllGuardsResult{
		AllowEntry:   allowEntry,
		BlockReason:  blockReason,
		BlockedBy:    blockedBy,
		Profile:      profile,
		Regime:       regime,
		GuardResults: guardResults,
	}
}

// SetRegimeAware allows runtime toggling of regime awareness.
func (e *Evaluator) SetRegimeAware(enabled bool) { e.regimeAware = enabled }

// IsRegimeAware returns the current regime-awareness setting.
func (e *Evaluator) IsRegimeAware() bool { return e.regimeAware }
