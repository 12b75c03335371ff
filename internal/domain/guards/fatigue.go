package guards

import (
	"fmt"

	"github.com/nseweekly/engine/internal/config"
)

// EvaluateFatigueGuard blocks a setup whose momentum is already stretched
// unless acceleration shows the move is still fresh.
func EvaluateFatigueGuard(inputs FatigueInputs, cfg FatigueConfig, regimeAware bool) GuardResult {
	profile := "baseline"
	thresholds := cfg.Baseline

	if regimeAware && inputs.Regime == config.RegimeRiskOn {
		if cfg.RiskOnProfile.RequiresAccelRenewal && inputs.AccelRenewal {
			profile = "risk_on"
			thresholds = cfg.RiskOnProfile
		}
	}

	momentumThreshold := thresholds.MomentumScoreThreshold
	if momentumThreshold > cfg.MaxMomentum {
		momentumThreshold = cfg.MaxMomentum
	}

	rsiThreshold := thresholds.RSI14Threshold
	if rsiThreshold > cfg.MaxRSI {
		rsiThreshold = cfg.MaxRSI
	}

	momentumHigh := inputs.MomentumScore > momentumThreshold
	rsiHigh := inputs.RSI14 > rsiThreshold
	accelerationOverride := inputs.Acceleration >= thresholds.AccelerationOverride

	shouldBlock := momentumHigh && rsiHigh && !accelerationOverride

	details := map[string]interface{}{
		"momentum_score":       inputs.MomentumScore,
		"momentum_threshold":   momentumThreshold,
		"rsi14":                inputs.RSI14,
		"rsi_threshold":        rsiThreshold,
		"acceleration":         inputs.Acceleration,
		"acceleration_override": thresholds.AccelerationOverride,
		"accel_renewal":        inputs.AccelRenewal,
	}

	var reason string
	switch {
	case !shouldBlock && !momentumHigh:
		reason = fmt.Sprintf("momentum_ok (%.1f <= %.1f)", inputs.MomentumScore, momentumThreshold)
	case !shouldBlock && !rsiHigh:
		reason = fmt.Sprintf("rsi_ok (%.1f <= %.1f)", inputs.RSI14, rsiThreshold)
	case !shouldBlock && accelerationOverride:
		reason = fmt.Sprintf("acceleration_override (%.1f >= %.1f)", inputs.Acceleration, thresholds.AccelerationOverride)
	case shouldBlock:
		reason = fmt.Sprintf("overextended (momentum=%.1f > %.1f, rsi=%.1f > %.1f, accel=%.1f < %.1f)",
			inputs.MomentumScore, momentumThreshold, inputs.RSI14, rsiThreshold,
			inputs.Acceleration, thresholds.AccelerationOverride)
	default:
		reason = "conditions_not_met"
	}

	return GuardResult{
		Allow:   !shouldBlock,
		Reason:  reason,
		Profile: profile,
		Regime:  inputs.Regime,
		Details: details,
	}
}
