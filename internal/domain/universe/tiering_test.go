package universe

import (
	"testing"

	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
)

func TestClassify(t *testing.T) {
	cfg := config.DefaultUniverseConfig()

	cases := []struct {
		name     string
		inst     Instrument
		wantTier domain.Tier
		wantActive bool
	}{
		{"mtf and nifty50", Instrument{IsMTF: true, InNifty50: true}, domain.TierA, true},
		{"mtf and nifty100", Instrument{IsMTF: true, InNifty100: true}, domain.TierB, true},
		{"mtf only", Instrument{IsMTF: true}, domain.TierD, true},
		{"nifty200 only, no mtf", Instrument{InNifty200: true}, domain.TierD, true},
		{"neither", Instrument{}, domain.TierD, false},
		{"nifty500 only", Instrument{InNifty500: true}, domain.TierD, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.inst, cfg)
			if got.Tier != tc.wantTier {
				t.Errorf("tier = %s, want %s", got.Tier, tc.wantTier)
			}
			if got.Active != tc.wantActive {
				t.Errorf("active = %v, want %v", got.Active, tc.wantActive)
			}
		})
	}
}

func TestBuild_DeactivatesAbsentSymbols(t *testing.T) {
	cfg := config.DefaultUniverseConfig()
	instruments := []Instrument{
		{Symbol: "RELIANCE", IsMTF: true, InNifty50: true},
	}
	previouslyActive := map[string]bool{
		"RELIANCE": true,
		"DELISTED": true,
	}

	result := Build(instruments, previouslyActive, cfg)

	if result.ActiveCount != 1 {
		t.Errorf("active count = %d, want 1", result.ActiveCount)
	}
	if len(result.DeactivatedSymbols) != 1 || result.DeactivatedSymbols[0] != "DELISTED" {
		t.Errorf("deactivated = %v, want [DELISTED]", result.DeactivatedSymbols)
	}
}
