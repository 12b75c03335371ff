package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// RiskConfig controls the S5 position-sizing run parameters. These are the
// three values the orchestration contract (§6) says every stage invocation
// carries: portfolioValue, riskPctPerTrade, and an optional regime override.
type RiskConfig struct {
	PortfolioValue   float64 `yaml:"portfolio_value"`
	RiskPctPerTrade  float64 `yaml:"risk_pct_per_trade"`
	MaxPositionPct   float64 `yaml:"max_position_pct"`
	MaxPositions     int     `yaml:"max_positions"`
	KellyPriorWin    float64 `yaml:"kelly_prior_win_rate"`
	KellyPriorAvgWin float64 `yaml:"kelly_prior_avg_win"`
	KellyPriorAvgLoss float64 `yaml:"kelly_prior_avg_loss"`
	RegimeOverride   string  `yaml:"regime_override,omitempty"`
}

// DefaultRiskConfig hardcodes the §4.9/§4.10 literal constants.
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		PortfolioValue:    1000000, // Rs 10,00,000
		RiskPctPerTrade:   0.015,
		MaxPositionPct:    0.08,
		MaxPositions:      12,
		KellyPriorWin:     0.50,
		KellyPriorAvgWin:  1.2,
		KellyPriorAvgLoss: 1.1,
	}
}

// LoadRiskConfig loads config/risk.yaml, falling back to defaults.
func LoadRiskConfig(path string) (*RiskConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultRiskConfig(), nil
	}

	var cfg RiskConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse risk YAML: %w", err)
	}
	if cfg.PortfolioValue <= 0 {
		return nil, fmt.Errorf("risk config: portfolio_value must be positive, got %.2f", cfg.PortfolioValue)
	}
	return &cfg, nil
}

// GetRiskConfigPath returns the conventional location of the risk file.
func GetRiskConfigPath() string {
	return "config/risk.yaml"
}
