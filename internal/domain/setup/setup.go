// Package setup implements S4B: chart-pattern recognition (PULLBACK,
// VCP_BREAKOUT, RETEST, GAP_FILL), entry/stop/target geometry, and
// rr-floor rejection (§4.8).
package setup

import (
	"math"

	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
)

// Pattern names one of the four recognized chart-pattern categories.
type Pattern string

const (
	Pullback    Pattern = "PULLBACK"
	VCPBreakout Pattern = "VCP_BREAKOUT"
	Retest      Pattern = "RETEST"
	GapFill     Pattern = "GAP_FILL"
)

// Inputs bundles everything a pattern recognizer and the entry/stop/target
// geometry need for one symbol on the evaluation date.
type Inputs struct {
	Symbol string

	Close   float64
	High52  float64
	SMA20   float64
	SMA50   float64
	SMA200  float64
	ATR14   float64
	RSI14   float64

	MACDHist     float64
	MACDHistPrev float64

	Vol20d        float64
	Last3dAvgVol  float64
	Last5dAvgVol  float64

	LowsLast20 []float64 // daily lows over the trailing 20 bars, used for swing low

	// VCP_BREAKOUT inputs
	RangeHigh8w   float64
	RangeLow8w    float64
	ATR14Ago21    float64

	// RETEST inputs
	BreakoutLevel      float64
	BreakoutBarVolume  float64
	BreakoutWeeksAgo    int
	PriorPullbackLow   float64
	MostRecentLow      float64

	// GAP_FILL inputs
	GapPct          float64
	GapFilledFrac   float64
	GapDayVolume    float64
	GapTop          float64
	GapDayAboveSMA20 bool

	// Quality composite inputs, computed by earlier stages.
	MomentumScore    float64
	ConsistencyScore float64
	LiquidityScore   float64
}

// Result is the S4B TradeSetup record (§3). A symbol emits zero or one.
type Result struct {
	domain.Header
	SetupType        Pattern
	EntryLow         float64
	EntryHigh        float64
	Stop             float64
	StopMethod       string
	Target1          float64
	Target2          float64
	RR               float64
	Confidence       float64
	QualityComposite float64
}

// Detect attempts, in priority order, to recognize one pattern for a
// symbol and compute its trade geometry. Returns (Result{}, false) if no
// pattern matches, or if the matched pattern's geometry fails the
// regime-adaptive rr floor or the 8% stop-distance ceiling, or leaves
// target2 (capped at the 52-week high) below target1.
func Detect(in Inputs, band config.SetupThresholds) (Result, bool) {
	allowed := make(map[Pattern]bool, len(band.AllowedPatterns))
	for _, p := range band.AllowedPatterns {
		allowed[Pattern(p)] = true
	}

	type candidate struct {
		pattern    Pattern
		support    float64
		confidence float64
		ok         bool
	}

	candidates := []candidate{
		{Pullback, in.SMA20, 0, false},
		{VCPBreakout, in.RangeHigh8w, 0, false},
		{Retest, in.BreakoutLevel, 0, false},
		{GapFill, in.GapTop, 0, false},
	}

	candidates[0].confidence, candidates[0].ok = matchPullback(in)
	candidates[1].confidence, candidates[1].ok = matchVCPBreakout(in)
	candidates[2].confidence, candidates[2].ok = matchRetest(in)
	candidates[3].confidence, candidates[3].ok = matchGapFill(in)

	for _, c := range candidates {
		if !c.ok || !allowed[c.pattern] {
			continue
		}

		res, ok := geometry(in, c.pattern, c.support, c.confidence, band)
		if ok {
			return res, true
		}
		// Pattern matched but geometry failed the rr floor, stop
		// ceiling or target ordering: no setup is emitted for this symbol (only one
		// pattern attempt is made per §4.8's "attempt, in order,
		// exactly one pattern").
		return Result{}, false
	}

	return Result{}, false
}

func matchPullback(in Inputs) (float64, bool) {
	maMin := math.Min(in.SMA20, in.SMA50)
	maMax := math.Max(in.SMA20, in.SMA50)
	lowBound := 0.95 * maMin
	highBound := 1.03 * maMax

	inBand := in.Close >= lowBound && in.Close <= highBound
	volContraction := in.Last3dAvgVol <= 0.70*in.Vol20d
	rsiBand := in.RSI14 >= 35 && in.RSI14 <= 55
	macdTurning := in.MACDHist > in.MACDHistPrev
	uptrend := in.Close > in.SMA50 && in.SMA50 > in.SMA200

	if !(inBand && volContraction && rsiBand && uptrend) {
		return 0, false
	}

	confidence := 60.0
	if macdTurning {
		confidence += 20
	}
	if in.MACDHistPrev <= 0 && in.MACDHist > in.MACDHistPrev {
		confidence += 20
	}
	return clampScore(confidence), true
}

func matchVCPBreakout(in Inputs) (float64, bool) {
	if in.RangeLow8w <= 0 {
		return 0, false
	}
	rangePct := (in.RangeHigh8w - in.RangeLow8w) / in.RangeLow8w
	mid := (in.RangeHigh8w + in.RangeLow8w) / 2
	nearMid := in.RangeHigh8w > 0 && math.Abs(in.Close-mid)/mid <= 0.05
	contracting := in.ATR14 < in.ATR14Ago21
	upperBand := in.RangeLow8w + 0.70*(in.RangeHigh8w-in.RangeLow8w)

	if !(rangePct <= 0.12 && nearMid && contracting && in.Close >= upperBand) {
		return 0, false
	}

	confidence := 65.0
	if rangePct <= 0.08 {
		confidence += 15
	}
	if contracting {
		confidence += 20
	}
	return clampScore(confidence), true
}

func matchRetest(in Inputs) (float64, bool) {
	if in.BreakoutLevel <= 0 || in.Vol20d <= 0 {
		return 0, false
	}
	recentBreakout := in.BreakoutWeeksAgo >= 2 && in.BreakoutWeeksAgo <= 3
	volConfirmed := in.BreakoutBarVolume >= 2.5*in.Vol20d
	holdingLevel := in.Close >= 0.97*in.BreakoutLevel
	volCooling := in.Last5dAvgVol <= 0.60*in.BreakoutBarVolume
	higherLow := in.MostRecentLow > in.PriorPullbackLow

	if !(recentBreakout && volConfirmed && holdingLevel && volCooling && higherLow) {
		return 0, false
	}

	confidence := 70.0
	if in.Close >= in.BreakoutLevel {
		confidence += 15
	}
	if volCooling {
		confidence += 15
	}
	return clampScore(confidence), true
}

func matchGapFill(in Inputs) (float64, bool) {
	uptrend := in.Close > in.SMA50
	gapInRange := in.GapPct >= 0.005 && in.GapPct <= 0.02
	gapFilled := in.GapFilledFrac >= 0.50 && in.GapFilledFrac <= 0.75
	volConfirmed := in.Vol20d > 0 && in.GapDayVolume >= 1.8*in.Vol20d

	if !(uptrend && gapInRange && gapFilled && volConfirmed && in.GapDayAboveSMA20) {
		return 0, false
	}

	confidence := 60.0
	if in.GapFilledFrac <= 0.60 {
		confidence += 20
	}
	if volConfirmed {
		confidence += 20
	}
	return clampScore(confidence), true
}

func geometry(in Inputs, pattern Pattern, support, confidence float64, band config.SetupThresholds) (Result, bool) {
	entryLow := support - 0.5*in.ATR14
	entryHigh := support + 0.5*in.ATR14
	midEntry := (entryLow + entryHigh) / 2

	swingLow := minFloat(in.LowsLast20)
	stopStruct := swingLow * 0.99
	stopVol := entryLow - 2*in.ATR14
	stop := math.Max(stopStruct, stopVol)
	stopMethod := "structure"
	if stopVol > stopStruct {
		stopMethod = "volatility"
	}

	risk := midEntry - stop
	if risk <= 0 {
		return Result{}, false
	}

	target1 := midEntry + 2*risk
	target2 := math.Min(midEntry+3*risk, in.High52)
	if target2 < target1 {
		return Result{}, false
	}
	rr := (target1 - midEntry) / risk

	stopDistancePct := (midEntry - stop) / midEntry

	if rr < band.RRFloor || stopDistancePct > band.MaxStopPct {
		return Result{}, false
	}

	qualityComposite := 0.25*in.MomentumScore + 0.25*in.ConsistencyScore + 0.25*in.LiquidityScore + 0.25*confidence

	return Result{
		Header:           domain.Header{Symbol: in.Symbol},
		SetupType:        pattern,
		EntryLow:         entryLow,
		EntryHigh:        entryHigh,
		Stop:             stop,
		StopMethod:       stopMethod,
		Target1:          target1,
		Target2:          target2,
		RR:               rr,
		Confidence:       confidence,
		QualityComposite: qualityComposite,
	}, true
}

func minFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
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
