package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Regime names the three market states the classifier can emit.
type Regime string

const (
	RegimeRiskOn  Regime = "RISK_ON"
	RegimeChoppy  Regime = "CHOPPY"
	RegimeRiskOff Regime = "RISK_OFF"
)

// ConsistencyThresholds are the regime-adaptive bounds from the consistency
// scoring table (S3). PosPctMin/SharpeMin are floors; Plus3PctRange is a
// closed interval; StdDevMax is a ceiling.
type ConsistencyThresholds struct {
	PosPctMin     float64    `yaml:"pos_pct_min"`
	Plus3PctRange [2]float64 `yaml:"plus3_pct_range"`
	StdDevMax     float64    `yaml:"std_dev_max"`
	SharpeMin     float64    `yaml:"sharpe_min"`
}

// SetupThresholds are regime-adaptive constraints on accepted trade setups.
type SetupThresholds struct {
	RRFloor          float64  `yaml:"rr_floor"`
	AllowedPatterns  []string `yaml:"allowed_patterns"`
	MaxStopPct       float64  `yaml:"max_stop_pct"`
}

// PortfolioThresholds are regime-adaptive portfolio construction constants.
type PortfolioThresholds struct {
	CashReservePct float64 `yaml:"cash_reserve_pct"`
}

// RegimeBand bundles every regime-adaptive threshold group for one regime.
type RegimeBand struct {
	Consistency ConsistencyThresholds `yaml:"consistency"`
	Setup       SetupThresholds       `yaml:"setup"`
	Portfolio   PortfolioThresholds   `yaml:"portfolio"`
	Multiplier  float64               `yaml:"multiplier"`
}

// Thresholds is the regime-adaptive configuration struct injected into each
// scoring function for the run, produced once per run by the regime
// classifier. There is no global mutable state: every stage activity
// receives its own copy of the band matching the run's classified regime.
type Thresholds struct {
	Bands map[Regime]RegimeBand `yaml:"bands"`
}

// LoadThresholds loads the regime-adaptive threshold file.
func LoadThresholds(path string) (*Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds config: %w", err)
	}

	var t Thresholds
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds YAML: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &t, nil
}

// ForRegime returns the threshold band for a regime, falling back to the
// spec's hardcoded defaults if the run's config omits that regime.
func (t *Thresholds) ForRegime(r Regime) RegimeBand {
	if t != nil {
		if band, ok := t.Bands[r]; ok {
			return band
		}
	}
	return DefaultThresholds().Bands[r]
}

// Validate checks that every regime carries a complete band with sane
// ranges. Errors accumulate so a config author sees every problem at once,
// mirroring the teacher's guard-profile validator.
func (t *Thresholds) Validate() error {
	var errs []string

	required := []Regime{RegimeRiskOn, RegimeChoppy, RegimeRiskOff}
	for _, r := range required {
		band, exists := t.Bands[r]
		if !exists {
			errs = append(errs, fmt.Sprintf("missing threshold band for regime %s", r))
			continue
		}
		if band.Consistency.PosPctMin <= 0 || band.Consistency.PosPctMin > 1 {
			errs = append(errs, fmt.Sprintf("regime %s: pos_pct_min %.2f outside (0,1]", r, band.Consistency.PosPctMin))
		}
		if band.Setup.RRFloor < 1.0 {
			errs = append(errs, fmt.Sprintf("regime %s: rr_floor %.2f below 1.0", r, band.Setup.RRFloor))
		}
		if band.Portfolio.CashReservePct < 0 || band.Portfolio.CashReservePct > 1 {
			errs = append(errs, fmt.Sprintf("regime %s: cash_reserve_pct %.2f outside [0,1]", r, band.Portfolio.CashReservePct))
		}
	}

	if len(errs) > 0 {
		msg := "invalid thresholds config:"
		for _, e := range errs {
			msg += "\n  - " + e
		}
		return fmt.Errorf(msg)
	}
	return nil
}

// DefaultThresholds hardcodes the §4.5/§4.6/§4.8/§4.10 tables from the
// specification so the engine can run without a config file present.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		Bands: map[Regime]RegimeBand{
			RegimeRiskOn: {
				Consistency: ConsistencyThresholds{
					PosPctMin:     0.60,
					Plus3PctRange: [2]float64{0.22, 0.40},
					StdDevMax:     0.065,
					SharpeMin:     0.12,
				},
				Setup:      SetupThresholds{RRFloor: 2.0, AllowedPatterns: []string{"PULLBACK", "VCP_BREAKOUT", "RETEST", "GAP_FILL"}, MaxStopPct: 0.08},
				Portfolio:  PortfolioThresholds{CashReservePct: 0.30},
				Multiplier: 1.0,
			},
			RegimeChoppy: {
				Consistency: ConsistencyThresholds{
					PosPctMin:     0.65,
					Plus3PctRange: [2]float64{0.25, 0.35},
					StdDevMax:     0.060,
					SharpeMin:     0.15,
				},
				Setup:      SetupThresholds{RRFloor: 2.5, AllowedPatterns: []string{"PULLBACK"}, MaxStopPct: 0.08},
				Portfolio:  PortfolioThresholds{CashReservePct: 0.35},
				Multiplier: 0.5,
			},
			RegimeRiskOff: {
				Consistency: ConsistencyThresholds{
					PosPctMin:     0.70,
					Plus3PctRange: [2]float64{0.20, 0.30},
					StdDevMax:     0.045,
					SharpeMin:     0.18,
				},
				Setup:      SetupThresholds{RRFloor: 2.5, AllowedPatterns: []string{}, MaxStopPct: 0.08},
				Portfolio:  PortfolioThresholds{CashReservePct: 1.0},
				Multiplier: 0.0,
			},
		},
	}
}

// GetThresholdsConfigPath returns the conventional location of the
// thresholds file relative to the working directory.
func GetThresholdsConfigPath() string {
	return "config/thresholds.yaml"
}
