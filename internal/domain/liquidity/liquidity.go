// Package liquidity implements S4A: turnover, peak-volume, and volume
// stability scoring with a circuit-hit and gap penalty (§4.7).
package liquidity

import (
	"math"

	"github.com/nseweekly/engine/internal/domain"
)

// DayBar is one day's OHLCV, used for turnover, circuit-hit, and gap
// computation over the trailing window.
type DayBar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Result is the S4A LiquidityScore record (§3).
type Result struct {
	domain.Header
	Turnover20dCr float64
	Turnover60dCr float64
	Peak30dCr     float64
	CircuitHits30d int
	AvgGapPct     float64
	Score         float64
	Qualifies     bool
}

// circuitBandApprox is the single approximated NSE circuit-filter band used
// for the daily-range heuristic (see DESIGN.md decision #2): a day's
// (high-low)/low within this tolerance of the band counts as a circuit hit.
const circuitBandApprox = 0.098
const circuitTolerance = 0.001

const croreINR = 10_000_000

// Evaluate computes the S4A liquidity metrics for one symbol from its last
// 90 trading days (oldest first), per §4.7.
func Evaluate(symbol string, days []DayBar) (Result, bool) {
	n := len(days)
	if n < 90 {
		return Result{}, false
	}

	turnover20 := avgTurnover(days, 20)
	turnover60 := avgTurnover(days, 60)
	peak30 := peakTurnover(days, 30)
	volStability := volumeStabilityScore(days, 20)
	circuitHits30 := countCircuitHits(days, 30)
	avgGapPct := averageGapPct(days, 30)

	turnover20N := clamp01(turnover20 / croreINR / 50)  // normalized against Rs 50 Cr reference
	turnover60N := clamp01(turnover60 / croreINR / 50)
	peak30N := clamp01(peak30 / croreINR / 100) // normalized against Rs 100 Cr reference

	score := 100 * (0.40*turnover20N + 0.30*turnover60N + 0.20*peak30N + 0.10*volStability)

	qualifies := score >= 75 &&
		turnover20/croreINR >= 10 &&
		circuitHits30 <= 1 &&
		avgGapPct <= 0.02

	return Result{
		Header:         domain.Header{Symbol: symbol},
		Turnover20dCr:  turnover20 / croreINR,
		Turnover60dCr:  turnover60 / croreINR,
		Peak30dCr:      peak30 / croreINR,
		CircuitHits30d: circuitHits30,
		AvgGapPct:      avgGapPct,
		Score:          score,
		Qualifies:      qualifies,
	}, true
}

func avgTurnover(days []DayBar, window int) float64 {
	n := len(days)
	if window > n {
		window = n
	}
	sum := 0.0
	for i := n - window; i < n; i++ {
		sum += days[i].Close * days[i].Volume
	}
	return sum / float64(window)
}

func peakTurnover(days []DayBar, window int) float64 {
	n := len(days)
	if window > n {
		window = n
	}
	peak := 0.0
	for i := n - window; i < n; i++ {
		t := days[i].Close * days[i].Volume
		if t > peak {
			peak = t
		}
	}
	return peak
}

func volumeStabilityScore(days []DayBar, window int) float64 {
	n := len(days)
	if window > n {
		window = n
	}
	slice := days[n-window:]
	mean := 0.0
	for _, d := range slice {
		mean += d.Volume
	}
	mean /= float64(window)
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, d := range slice {
		diff := d.Volume - mean
		variance += diff * diff
	}
	variance /= float64(window)
	stdDev := math.Sqrt(variance)
	// volStability = 1 - stdev(vol20d)/mean(vol20d), floored at 0.
	return math.Max(0, 1-stdDev/mean)
}

func countCircuitHits(days []DayBar, window int) int {
	n := len(days)
	if window > n {
		window = n
	}
	slice := days[n-window:]
	count := 0
	for _, d := range slice {
		if d.Low <= 0 {
			continue
		}
		dayRange := (d.High - d.Low) / d.Low
		if math.Abs(dayRange-circuitBandApprox) <= circuitTolerance {
			count++
		}
	}
	return count
}

// averageGapPct averages the absolute overnight open-vs-prior-close gap
// over the trailing window.
func averageGapPct(days []DayBar, window int) float64 {
	n := len(days)
	if window > n {
		window = n
	}
	start := n - window
	if start < 1 {
		start = 1
	}
	sum := 0.0
	count := 0
	for i := start; i < n; i++ {
		prevClose := days[i-1].Close
		if prevClose <= 0 {
			continue
		}
		gap := math.Abs(days[i].Open-prevClose) / prevClose
		sum += gap
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
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
