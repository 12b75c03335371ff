package setup

import (
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func pullbackInputs() Inputs {
	return Inputs{
		Symbol: "X",
		Close:  95, High52: 110,
		SMA20: 95, SMA50: 90, SMA200: 80,
		ATR14: 2, RSI14: 45,
		MACDHist: 0.1, MACDHistPrev: -0.1,
		Vol20d: 100000, Last3dAvgVol: 50000, Last5dAvgVol: 60000,
		LowsLast20:       []float64{92, 93, 94, 91, 90},
		MomentumScore:    80, ConsistencyScore: 70, LiquidityScore: 85,
	}
}

func TestDetect_PullbackScenario(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Setup
	in := pullbackInputs()
	r, ok := Detect(in, band)
	if !ok {
		t.Fatalf("expected a PULLBACK setup to be detected")
	}
	if r.SetupType != Pullback {
		t.Errorf("setupType = %s, want PULLBACK", r.SetupType)
	}
	if !(r.Stop < r.EntryLow && r.EntryLow < r.EntryHigh && r.EntryHigh < r.Target1 && r.Target1 <= r.Target2) {
		t.Errorf("ordering invariant violated: stop=%.2f entryLow=%.2f entryHigh=%.2f target1=%.2f target2=%.2f",
			r.Stop, r.EntryLow, r.EntryHigh, r.Target1, r.Target2)
	}
	if r.RR < band.RRFloor {
		t.Errorf("rr = %.2f below floor %.2f", r.RR, band.RRFloor)
	}
}

func TestDetect_ChoppyRegimeRestrictsToPullback(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeChoppy).Setup
	in := pullbackInputs()
	in.RangeHigh8w = 100
	in.RangeLow8w = 92
	in.ATR14Ago21 = 3
	_, ok := Detect(in, band)
	if !ok {
		t.Fatalf("expected PULLBACK to still be allowed under CHOPPY")
	}
}

func TestDetect_RiskOffAllowsNoPatterns(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOff).Setup
	in := pullbackInputs()
	_, ok := Detect(in, band)
	if ok {
		t.Errorf("expected RISK_OFF's empty allowed-pattern set to emit no setup")
	}
}

func TestDetect_NoPatternMatches(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Setup
	in := pullbackInputs()
	in.Close = 200 // far outside every pattern band
	_, ok := Detect(in, band)
	if ok {
		t.Errorf("expected no setup when no pattern predicate matches")
	}
}
