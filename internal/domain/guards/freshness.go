package guards

import (
	"fmt"

	"github.com/nseweekly/engine/internal/config"
)

// EvaluateFreshnessGuard blocks a setup built on data that is too old, or
// where price has since drifted too far in ATR terms for the entry
// geometry to still be meaningful.
func EvaluateFreshnessGuard(inputs FreshnessInputs, cfg FreshnessConfig, regimeAware bool) GuardResult {
	profile := "baseline"
	thresholds := cfg.Baseline

	if regimeAware && inputs.Regime == config.RegimeRiskOn {
		volumeOK := !cfg.RiskOnProfile.RequiresVolumeConfirm || inputs.VolumeConfirmed
		if volumeOK {
			profile = "risk_on"
			thresholds = cfg.RiskOnProfile
		}
	}

	maxDaysAge := thresholds.MaxDaysAge
	if maxDaysAge > cfg.MaxDaysAgeAbs {
		maxDaysAge = cfg.MaxDaysAgeAbs
	}

	atrFactor := thresholds.ATRFactor
	if atrFactor < cfg.MinATRFactor {
		atrFactor = cfg.MinATRFactor
	}

	ageExceeded := inputs.DaysAge > maxDaysAge

	var atrMultiple float64
	var priceMovedTooMuch bool
	if inputs.ATR14 > 0 {
		atrMultiple = inputs.PriceChange / inputs.ATR14
		priceMovedTooMuch = atrMultiple > atrFactor
	}

	shouldBlock := ageExceeded || priceMovedTooMuch

	details := map[string]interface{}{
		"days_age":             inputs.DaysAge,
		"max_days_age":         maxDaysAge,
		"price_change":         inputs.PriceChange,
		"atr14":                inputs.ATR14,
		"atr_multiple":         atrMultiple,
		"atr_factor_limit":     atrFactor,
		"age_exceeded":         ageExceeded,
		"price_moved_too_much": priceMovedTooMuch,
	}

	var reason string
	switch {
	case !shouldBlock:
		reason = fmt.Sprintf("fresh (age=%d <= %d days, price=%.2fx <= %.2fx ATR)", inputs.DaysAge, maxDaysAge, atrMultiple, atrFactor)
	case ageExceeded:
		reason = fmt.Sprintf("too_old (%d > %d days)", inputs.DaysAge, maxDaysAge)
	case priceMovedTooMuch:
		reason = fmt.Sprintf("price_moved_too_much (%.2fx > %.2fx ATR)", atrMultiple, atrFactor)
	default:
		reason = "stale_signal"
	}

	return GuardResult{
		Allow:   !shouldBlock,
		Reason:  reason,
		Profile: profile,
		Regime:  inputs.Regime,
		Details: details,
	}
}
