// Package consistency implements S3: the nine-metric weekly-return
// consistency gate with regime-adaptive thresholds and a binomial
// significance test (§4.6).
package consistency

import (
	"math"

	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
)

// Result is the S3 ConsistencyScore record (§3).
type Result struct {
	domain.Header
	PosPct          float64
	Plus3Pct        float64
	Plus5Pct        float64
	StdDev          float64
	AvgWeeklyReturn float64
	Sharpe          float64
	Sortino         float64
	MaxWinStreak    int
	ConsistencyScore float64
	RegimeScore     float64
	PercentileRank  float64
	FinalScore      float64
	ChecksPassed    int
	SignificanceP   float64
	Qualifies       bool
}

// Evaluate computes the nine metrics and regime-adaptive qualification for
// one symbol from its weekly returns (oldest first; at least 40 are
// required, typically the last 52). percentileRank
// is the symbol's consistencyScore percentile within the evaluated cohort,
// computed by the caller (S3 is a cross-sectional stage) and passed in.
func Evaluate(symbol string, weeklyReturns []float64, percentileRank float64, band config.ConsistencyThresholds) (Result, bool) {
	const minWeeks = 40
	if len(weeklyReturns) < minWeeks {
		return Result{}, false
	}

	n := len(weeklyReturns)
	posCount := 0
	plus3Count := 0
	plus5Count := 0
	sum := 0.0
	for _, r := range weeklyReturns {
		if r > 0 {
			posCount++
		}
		if r >= 0.03 {
			plus3Count++
		}
		if r >= 0.05 {
			plus5Count++
		}
		sum += r
	}
	posPct := float64(posCount) / float64(n)
	plus3Pct := float64(plus3Count) / float64(n)
	plus5Pct := float64(plus5Count) / float64(n)
	avgReturn := sum / float64(n)

	variance := 0.0
	downsideVariance := 0.0
	downsideCount := 0
	for _, r := range weeklyReturns {
		variance += (r - avgReturn) * (r - avgReturn)
		if r < 0 {
			downsideVariance += r * r
			downsideCount++
		}
	}
	variance /= float64(n - 1)
	stdDev := math.Sqrt(variance)

	downsideStdDev := 0.0
	if downsideCount > 0 {
		downsideStdDev = math.Sqrt(downsideVariance / float64(downsideCount))
	}

	sharpe := 0.0
	if stdDev > 0 {
		sharpe = avgReturn / stdDev
	}
	sortino := 0.0
	if downsideStdDev > 0 {
		sortino = avgReturn / downsideStdDev
	}

	maxWinStreak := maxStreak(weeklyReturns)

	avg13w := avgOfLast(weeklyReturns, 13)
	avg52w := avgOfLast(weeklyReturns, 52)
	regimeScore := 0.0
	if avg52w != 0 {
		regimeScore = clampRange(avg13w/avg52w, 0, 3)
	}

	posPctN := clamp01(posPct / 1.0)
	plus3PctN := clamp01(plus3Pct / 0.40)
	stdDevInvN := 0.0
	if stdDev > 0 {
		stdDevInvN = clamp01((1 / stdDev) / (1 / 0.03)) // normalized against a tight 3% reference stdDev
	}
	sharpeN := clamp01(sharpe / 0.30)
	winStreakN := clamp01(float64(maxWinStreak) / 8.0)

	consistencyScore := 100 * (0.25*posPctN + 0.25*plus3PctN + 0.20*stdDevInvN + 0.15*sharpeN + 0.15*winStreakN)
	regimeScoreN := clamp01(regimeScore / 3.0)
	finalScore := 0.40*consistencyScore + 0.25*regimeScoreN*100 + 0.20*percentileRank + 0.15*sharpeN*100

	checks := 0
	if posPct >= band.PosPctMin {
		checks++
	}
	if plus3Pct >= band.Plus3PctRange[0] && plus3Pct <= band.Plus3PctRange[1] {
		checks++
	}
	if stdDev <= band.StdDevMax {
		checks++
	}
	if sharpe >= band.SharpeMin {
		checks++
	}
	if consistencyScore >= 75 {
		checks++
	}
	if regimeScore >= 1.0 {
		checks++
	}

	pValue := binomialUpperTailP(posCount, n, 0.5)
	significant := pValue < 0.10

	qualifies := checks >= 5 && significant

	return Result{
		Header:           domain.Header{Symbol: symbol},
		PosPct:           posPct,
		Plus3Pct:         plus3Pct,
		Plus5Pct:         plus5Pct,
		StdDev:           stdDev,
		AvgWeeklyReturn:  avgReturn,
		Sharpe:           sharpe,
		Sortino:          sortino,
		MaxWinStreak:     maxWinStreak,
		ConsistencyScore: consistencyScore,
		RegimeScore:      regimeScore,
		PercentileRank:   percentileRank,
		FinalScore:       finalScore,
		ChecksPassed:     checks,
		SignificanceP:    pValue,
		Qualifies:        qualifies,
	}, true
}

func maxStreak(returns []float64) int {
	best, cur := 0, 0
	for _, r := range returns {
		if r > 0 {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

func avgOfLast(returns []float64, n int) float64 {
	if len(returns) < n {
		n = len(returns)
	}
	if n == 0 {
		return 0
	}
	window := returns[len(returns)-n:]
	sum := 0.0
	for _, r := range window {
		sum += r
	}
	return sum / float64(n)
}

func clamp01(v float64) float64 { return clampRange(v, 0, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// binomialUpperTailP computes P(X >= k) under Binomial(n, p) via the exact
// sum of binomial probabilities, used for the one-sided significance test
// of posPct > 0.50 (§4.6: "one-sided binomial test of posPct > 0.50 with
// p < 0.10"). n here is at most a few hundred (52-week to multi-year
// windows), so the direct summation is numerically fine without a normal
// approximation.
func binomialUpperTailP(k, n int, p float64) float64 {
	logP := 0.0
	total := 0.0
	for i := k; i <= n; i++ {
		total += math.Exp(logBinomialPMF(n, i, p))
	}
	_ = logP
	return total
}

func logBinomialPMF(n, k int, p float64) float64 {
	return logChoose(n, k) + float64(k)*math.Log(p) + float64(n-k)*math.Log(1-p)
}

func logChoose(n, k int) float64 {
	return lgamma(float64(n+1)) - lgamma(float64(k+1)) - lgamma(float64(n-k+1))
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
