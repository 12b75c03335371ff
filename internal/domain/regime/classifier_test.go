package regime

import (
	"testing"
	"time"
)

func TestClassify_RiskOff(t *testing.T) {
	in := Inputs{
		NiftyClose: 100, NiftySMA20: 110, NiftySMA50: 115, NiftySMA200: 120,
		NiftySlope20: -0.01, NiftySlope50: -0.01, NiftySlope200: -0.01,
		PctAbove200DMA: 0.1, PctAbove50DMA: 0.1,
		VIXAvailable: true, VIX: 30,
		CyclicalReturn20d: -0.05, DefensiveReturn20d: 0.02,
	}
	d := Classify("2026-07-27", in, time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC))
	if d.State != RiskOff {
		t.Errorf("state = %s, want RISK_OFF (composite=%.1f)", d.State, d.Composite)
	}
	if d.Multiplier != 0.0 {
		t.Errorf("multiplier = %.2f, want 0.0", d.Multiplier)
	}
}

func TestClassify_RiskOn(t *testing.T) {
	in := Inputs{
		NiftyClose: 120, NiftySMA20: 110, NiftySMA50: 105, NiftySMA200: 100,
		NiftySlope20: 0.01, NiftySlope50: 0.01, NiftySlope200: 0.01,
		PctAbove200DMA: 0.8, PctAbove50DMA: 0.75,
		VIXAvailable: true, VIX: 12, VIX10dAvg: 12, VIXTrendFalling: true,
		CyclicalReturn20d: 0.05, DefensiveReturn20d: 0.0,
	}
	d := Classify("2026-07-27", in, time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC))
	if d.State != RiskOn {
		t.Errorf("state = %s, want RISK_ON (composite=%.1f)", d.State, d.Composite)
	}
	if d.Multiplier != 1.0 {
		t.Errorf("multiplier = %.2f, want 1.0", d.Multiplier)
	}
}
