package config

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ConvictionWeights controls the S8 conviction10 composite (§4.12).
type ConvictionWeights struct {
	Momentum        float64 `yaml:"momentum"`
	Consistency     float64 `yaml:"consistency"`
	Liquidity       float64 `yaml:"liquidity"`
	Fundamental     float64 `yaml:"fundamental"`
	SetupConfidence float64 `yaml:"setup_confidence"`
}

// WeightsConfig is the top-level weights file shape, loaded once per run.
type WeightsConfig struct {
	Conviction ConvictionWeights `yaml:"conviction"`
	Validation struct {
		WeightSumTolerance float64 `yaml:"weight_sum_tolerance"`
	} `yaml:"validation"`
}

// DefaultConvictionWeights mirrors the §4.12 formula's literal coefficients.
var DefaultConvictionWeights = ConvictionWeights{
	Momentum:        0.25,
	Consistency:     0.20,
	Liquidity:       0.15,
	Fundamental:     0.20,
	SetupConfidence: 0.20,
}

// LoadWeightsConfig loads config/weights.yaml, falling back to the spec's
// hardcoded defaults on any read/parse/validation failure so a missing
// config file never blocks a run.
func LoadWeightsConfig(path string) *WeightsConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("weights config unreadable, using defaults")
		return defaultWeightsConfig()
	}

	var cfg WeightsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("weights config unparsable, using defaults")
		return defaultWeightsConfig()
	}

	if err := validateConvictionWeights(cfg.Conviction, cfg.Validation.WeightSumTolerance); err != nil {
		log.Warn().Err(err).Msg("weights config invalid, using defaults")
		return defaultWeightsConfig()
	}

	return &cfg
}

func defaultWeightsConfig() *WeightsConfig {
	cfg := &WeightsConfig{Conviction: DefaultConvictionWeights}
	cfg.Validation.WeightSumTolerance = 0.01
	return cfg
}

func validateConvictionWeights(w ConvictionWeights, tolerance float64) error {
	if tolerance <= 0 {
		tolerance = 0.01
	}
	sum := w.Momentum + w.Consistency + w.Liquidity + w.Fundamental + w.SetupConfidence
	if math.Abs(sum-1.0) > tolerance {
		return fmt.Errorf("conviction weights sum to %.4f, expected 1.0 +/- %.4f", sum, tolerance)
	}
	return nil
}

// GetWeightsConfigPath returns the conventional location of the weights file.
func GetWeightsConfigPath() string {
	return "config/weights.yaml"
}
