package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// UniverseConfig controls S1's quality-tiering bonuses (§4.3). The formula
// itself is fixed by the spec; this lets the MTF base score and index
// bonuses be tuned without a code change, the way the teacher tunes guard
// thresholds from YAML rather than constants.
type UniverseConfig struct {
	MTFBase     float64            `yaml:"mtf_base"`
	IndexBonus  map[string]float64 `yaml:"index_bonus"` // "nifty50","nifty100","nifty200","nifty500"
	TierCutoffs struct {
		A float64 `yaml:"a"`
		B float64 `yaml:"b"`
		C float64 `yaml:"c"`
	} `yaml:"tier_cutoffs"`
}

// DefaultUniverseConfig hardcodes the §4.3 formula's literal constants.
func DefaultUniverseConfig() *UniverseConfig {
	cfg := &UniverseConfig{
		MTFBase: 40,
		IndexBonus: map[string]float64{
			"nifty50":  50,
			"nifty100": 35,
			"nifty200": 25,
			"nifty500": 20,
		},
	}
	cfg.TierCutoffs.A = 90
	cfg.TierCutoffs.B = 75
	cfg.TierCutoffs.C = 60
	return cfg
}

// LoadUniverseConfig loads config/universe.yaml, falling back to defaults.
func LoadUniverseConfig(path string) (*UniverseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultUniverseConfig(), nil
	}

	var cfg UniverseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse universe YAML: %w", err)
	}
	return &cfg, nil
}

// GetUniverseConfigPath returns the conventional location of the universe file.
func GetUniverseConfigPath() string {
	return "config/universe.yaml"
}
