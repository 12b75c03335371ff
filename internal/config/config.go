// Package config loads the YAML configuration files that parameterize a
// weekly run: regime-adaptive thresholds, conviction/scoring weights,
// universe tiering bonuses, and risk/sizing inputs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
)

// Config aggregates every configuration surface a run needs. It is loaded
// once at process start and passed by pointer into the pipeline; no component
// mutates it, matching the "no global mutable state" design note.
type Config struct {
	Thresholds *Thresholds
	Weights    *WeightsConfig
	Universe   *UniverseConfig
	Risk       *RiskConfig
}

// Load reads every config file from the conventional config/ directory,
// falling back to spec defaults for any file that is absent. A malformed
// (present but unparsable) thresholds, universe or risk file is a hard
// error — silently running with defaults over a deliberately-edited-but-
// broken file would mask an operator mistake. The weights file is the
// exception: LoadWeightsConfig falls back to defaults with a logged
// warning when it cannot read, parse or validate the file.
func Load() (*Config, error) {
	thresholds, err := LoadThresholds(GetThresholdsConfigPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading thresholds config: %w", err)
		}
		thresholds = DefaultThresholds()
	}

	weights := LoadWeightsConfig(GetWeightsConfigPath())

	universe, err := LoadUniverseConfig(GetUniverseConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading universe config: %w", err)
	}

	risk, err := LoadRiskConfig(GetRiskConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading risk config: %w", err)
	}

	return &Config{
		Thresholds: thresholds,
		Weights:    weights,
		Universe:   universe,
		Risk:       risk,
	}, nil
}
