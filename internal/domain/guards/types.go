// Package guards implements entry-safety checks applied to a detected
// setup before it reaches the recommendation card: momentum exhaustion
// (fatigue) and data staleness (freshness), each with a regime-aware
// threshold profile.
package guards

import "github.com/nseweekly/engine/internal/config"

// GuardConfig holds regime-aware guard thresholds.
type GuardConfig struct {
	RegimeAware bool `yaml:"regime_aware"`

	Fatigue   FatigueConfig   `yaml:"fatigue"`
	Freshness FreshnessConfig `yaml:"freshness"`
}

// FatigueConfig controls overextension protection: a setup whose weekly
// momentum and RSI are both already stretched is blocked unless the move
// is still accelerating.
type FatigueConfig struct {
	Baseline        FatigueThresholds `yaml:"baseline"`
	RiskOnProfile   FatigueThresholds `yaml:"risk_on_profile"`
	MaxMomentum     float64           `yaml:"max_momentum_threshold"`
	MaxRSI          float64           `yaml:"max_rsi_threshold"`
}

type FatigueThresholds struct {
	MomentumScoreThreshold float64 `yaml:"momentum_score_threshold"`
	RSI14Threshold         float64 `yaml:"rsi14_threshold"`
	AccelerationOverride   float64 `yaml:"acceleration_override"`
	RequiresAccelRenewal   bool    `yaml:"requires_accel_renewal"`
}

// FreshnessConfig controls signal staleness protection: a setup built on
// data too many trading days old, or where price has since drifted too
// far in ATR terms, is blocked.
type FreshnessConfig struct {
	Baseline      FreshnessThresholds `yaml:"baseline"`
	RiskOnProfile FreshnessThresholds `yaml:"risk_on_profile"`
	MaxDaysAgeAbs int                 `yaml:"max_days_age_absolute"`
	MinATRFactor  float64             `yaml:"min_atr_factor"`
}

type FreshnessThresholds struct {
	MaxDaysAge   int     `yaml:"max_days_age"`
	ATRFactor    float64 `yaml:"atr_factor"`
	RequiresVolumeConfirm bool `yaml:"requires_volume_confirm"`
}

// FatigueInputs carries the weekly momentum/RSI state for one candidate.
type FatigueInputs struct {
	Symbol       string
	MomentumScore float64
	RSI14        float64
	Acceleration float64 // week-over-week change in MomentumScore
	AccelRenewal bool
	Regime       config.Regime
}

// FreshnessInputs carries the data-age state for one candidate at the
// moment a recommendation card is assembled.
type FreshnessInputs struct {
	Symbol           string
	DaysAge          int
	PriceChange      float64
	ATR14            float64
	VolumeConfirmed  bool
	Regime           config.Regime
}

// GuardResult is the outcome of a single guard evaluation.
type GuardResult struct {
	Allow   bool
	Reason  string
	Profile string // "baseline" or "risk_on"
	Regime  config.Regime
	Details map[string]interface{}
}

// AllGuardsInputs bundles both guard inputs for one candidate.
type AllGuardsInputs struct {
	Fatigue   FatigueInputs
	Freshness FreshnessInputs
}

// AllGuardsResult is the combined pass/fail across both guards.
type AllGuardsResult struct {
	AllowEntry   bool
	BlockReason  string
	BlockedBy    string
	Profile      string
	Regime       config.Regime
	GuardResults map[string]GuardResult
}

// DefaultGuardConfig returns the hardcoded fallback thresholds.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RegimeAware: true,
		Fatigue: FatigueConfig{
			Baseline: FatigueThresholds{
				MomentumScoreThreshold: 90,
				RSI14Threshold:         75,
				AccelerationOverride:   5,
			},
			RiskOnProfile: FatigueThresholds{
				MomentumScoreThreshold: 95,
				RSI14Threshold:         80,
				AccelerationOverride:   5,
				RequiresAccelRenewal:   true,
			},
			MaxMomentum: 95,
			MaxRSI:      80,
		},
		Freshness: FreshnessConfig{
			Baseline: FreshnessThresholds{
				MaxDaysAge: 3,
				ATRFactor:  1.5,
			},
			RiskOnProfile: FreshnessThresholds{
				MaxDaysAge:            5,
				ATRFactor:             2.0,
				RequiresVolumeConfirm: true,
			},
			MaxDaysAgeAbs: 5,
			MinATRFactor:  1.0,
		},
	}
}
