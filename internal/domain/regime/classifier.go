// Package regime implements C5: classifying the market into
// {RISK_ON, CHOPPY, RISK_OFF} from four equal-weighted subscores, and
// emitting the position multiplier (§4.5). The regime-adaptive thresholds
// that gate the rest of the pipeline are looked up from the classified
// state via config.Thresholds.ForRegime.
package regime

import (
	"fmt"
	"math"
	"time"
)

// State is the classified market regime.
type State string

const (
	RiskOn  State = "RISK_ON"
	Choppy  State = "CHOPPY"
	RiskOff State = "RISK_OFF"
)

// Subscore names one of the four 0-100 inputs to the composite.
type Subscore struct {
	Name  string
	Value float64
}

// Inputs bundles the Nifty-wide and breadth data the classifier reads.
type Inputs struct {
	// Trend
	NiftyClose               float64
	NiftySMA20, NiftySMA50, NiftySMA200 float64
	NiftySlope20, NiftySlope50, NiftySlope200 float64

	// Breadth
	PctAbove200DMA float64 // fraction of universe above 200 DMA
	PctAbove50DMA  float64 // fraction of universe above 50 DMA

	// Volatility: India VIX if available, else realized 20d vol substitute.
	VIX            float64
	VIXAvailable   bool
	RealizedVol20  float64
	VIX10dAvg      float64
	VIXTrendFalling bool // is VIX trending down over the recent window

	// Leadership: mean 20-day return of cyclicals minus defensives.
	CyclicalReturn20d  float64 // mean of Bank, Metal, Realty, Auto
	DefensiveReturn20d float64 // mean of Pharma, FMCG, IT
}

// Detection is the C5 Regime record (§3).
type Detection struct {
	Week        string
	State       State
	Confidence  float64
	Subscores   []Subscore
	Composite   float64
	Multiplier  float64
	DetectedAt  time.Time
}

// Classify runs the four subscores and the composite classification table.
func Classify(week string, in Inputs, now time.Time) Detection {
	trend := trendSubscore(in)
	breadth := breadthSubscore(in)
	vol := volatilitySubscore(in)
	leadership := leadershipSubscore(in)

	subscores := []Subscore{
		{"trend", trend},
		{"breadth", breadth},
		{"volatility", vol},
		{"leadership", leadership},
	}

	composite := (trend + breadth + vol + leadership) / 4.0

	var state State
	var multiplier float64
	switch {
	case composite >= 70:
		state = RiskOn
		multiplier = 1.0
	case composite >= 50 && trend >= 70:
		// Composite sits in the nominal CHOPPY band (50-69) but trend
		// alone is strong: promoted to RISK_ON at the reduced multiplier.
		state = RiskOn
		multiplier = 0.7
	case composite >= 40:
		state = Choppy
		multiplier = 0.5
	default:
		state = RiskOff
		multiplier = 0.0
	}

	confidence := composite / 100.0
	if confidence > 1 {
		confidence = 1
	}

	return Detection{
		Week:       week,
		State:      state,
		Confidence: confidence,
		Subscores:  subscores,
		Composite:  composite,
		Multiplier: multiplier,
		DetectedAt: now,
	}
}

func trendSubscore(in Inputs) float64 {
	score := 0.0
	if in.NiftyClose > in.NiftySMA20 {
		score += 25
	}
	if in.NiftyClose > in.NiftySMA50 {
		score += 25
	}
	if in.NiftyClose > in.NiftySMA200 {
		score += 25
	}
	if in.NiftySlope20 > 0 && in.NiftySlope50 > 0 && in.NiftySlope200 > 0 {
		score += 25
	}
	return score
}

func breadthSubscore(in Inputs) float64 {
	return 100 * (0.5*clamp01(in.PctAbove200DMA) + 0.5*clamp01(in.PctAbove50DMA))
}

func volatilitySubscore(in Inputs) float64 {
	vix := in.VIX
	if !in.VIXAvailable {
		// Substitute realized 20-day vol, expressed on a VIX-comparable
		// scale (annualized percentage), when India VIX isn't available.
		vix = in.RealizedVol20 * math.Sqrt(252) * 100
	}

	band := 0.0
	switch {
	case vix < 13:
		band = 40
	case vix < 16:
		band = 35
	case vix < 20:
		band = 25
	case vix < 25:
		band = 10
	default:
		band = 0
	}

	trendBonus := 0.0
	if in.VIXTrendFalling {
		trendBonus = 30
	}

	spikePenalty := 0.0
	if in.VIX10dAvg > 0 && vix > 1.3*in.VIX10dAvg {
		spikePenalty = 30
	}

	score := band + trendBonus - spikePenalty + 30 // baseline lift so the band alone isn't the whole scale
	return clampScore(score)
}

func leadershipSubscore(in Inputs) float64 {
	spread := in.CyclicalReturn20d - in.DefensiveReturn20d
	switch {
	case spread >= 0.03:
		return 100
	case spread >= 0.01:
		return 75
	case spread >= -0.01:
		return 50
	case spread >= -0.03:
		return 25
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// FormatReport renders a human-readable summary of a detection, for the
// `weeklyengine regime` CLI subcommand.
func FormatReport(d Detection) string {
	report := fmt.Sprintf("Regime: %s (composite %.1f, confidence %.1f%%)\n", d.State, d.Composite, d.Confidence*100)
	report += fmt.Sprintf("Week: %s  Multiplier: %.2f  Detected: %s\n", d.Week, d.Multiplier, d.DetectedAt.Format("2006-01-02 15:04:05"))
	report += "Subscores:\n"
	for _, s := range d.Subscores {
		report += fmt.Sprintf("  %-10s %.1f\n", s.Name, s.Value)
	}
	return report
}
