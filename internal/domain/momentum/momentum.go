// Package momentum implements S2: the five-filter momentum gate and
// composite 0-100 score (§4.4).
package momentum

import "github.com/nseweekly/engine/internal/domain"

// Inputs bundles everything filter 2A-2E reads for one symbol.
type Inputs struct {
	Symbol string

	Close  float64
	High52 float64
	Low52  float64
	Vol20d float64 // current 20-day realized vol
	Vol20dAvg float64 // trailing average of 20-day vol, for surge detection

	SMA20, SMA50, SMA200          float64
	Slope20, Slope50, Slope200    float64

	Return1M, Return3M, Return6M             float64
	NiftyReturn1M, NiftyReturn3M, NiftyReturn6M float64

	Acceleration float64 // rate of change of momentum, normalized 0..1 input to 2D

	StockVol30, NiftyVol30 float64
}

// Score is the S2 MomentumScore record (§3).
type Score struct {
	domain.Header
	Value          float64 `db:"score"`
	FiltersPassed  int     `db:"filters_passed"`
	Pass2A, Pass2B, Pass2C, Pass2D, Pass2E bool
	Proximity      float64
	MAAlignScore   int
	Qualifies      bool `db:"qualifies"`
}

// Evaluate runs all five filters and computes the composite score.
func Evaluate(in Inputs) Score {
	proximity := 0.0
	if rng := in.High52 - in.Low52; rng > 0 {
		proximity = (in.Close - in.Low52) / rng
	}

	surge := in.Vol20dAvg > 0 && in.Vol20d/in.Vol20dAvg >= 1.5
	pass2A := proximity >= 0.90 || (proximity >= 0.80 && surge)

	maAlignScore := maAlignmentScore(in)
	pass2B := maAlignScore >= 4

	rsCount := 0
	if in.Return1M-in.NiftyReturn1M >= 0.05 {
		rsCount++
	}
	if in.Return3M-in.NiftyReturn3M >= 0.10 {
		rsCount++
	}
	if in.Return6M-in.NiftyReturn6M >= 0.15 {
		rsCount++
	}
	pass2C := rsCount >= 2

	proximityNorm := clamp01(proximity)
	rsNorm := clamp01(float64(rsCount) / 3.0)
	maNorm := float64(maAlignScore) / 5.0
	accelNorm := clamp01(in.Acceleration)
	composite := 100 * (0.25*proximityNorm + 0.25*rsNorm + 0.25*maNorm + 0.25*accelNorm)
	pass2D := composite >= 75

	volRatio := 0.0
	if in.NiftyVol30 > 0 {
		volRatio = in.StockVol30 / in.NiftyVol30
	}
	pass2E := volRatio <= 1.5

	passed := boolCount(pass2A, pass2B, pass2C, pass2D, pass2E)

	return Score{
		Header:        domain.Header{Symbol: in.Symbol},
		Value:         composite,
		FiltersPassed: passed,
		Pass2A:        pass2A,
		Pass2B:        pass2B,
		Pass2C:        pass2C,
		Pass2D:        pass2D,
		Pass2E:        pass2E,
		Proximity:     proximity,
		MAAlignScore:  maAlignScore,
		Qualifies:     passed >= 4,
	}
}

// maAlignmentScore counts the five sub-conditions of filter 2B: three price
// position checks, one ordering check, and one all-slopes check.
func maAlignmentScore(in Inputs) int {
	score := 0
	if in.Close > in.SMA20 {
		score++
	}
	if in.Close > in.SMA50 {
		score++
	}
	if in.Close > in.SMA200 {
		score++
	}
	if in.SMA20 > in.SMA50 && in.SMA50 > in.SMA200 {
		score++
	}
	if in.Slope20 >= 0.001 && in.Slope50 >= 0.0005 && in.Slope200 >= 0.0002 {
		score++
	}
	return score
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

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
