// Package indicators computes the technical indicators the engine needs
// locally from DailyBar history, per §4.2: SMA, Wilder ATR(14), Wilder
// RSI(14), and MACD(12,26,9). Indicators are never taken from the market
// data provider directly, to avoid provider-specific drift.
package indicators

import (
	"math"

	"github.com/nseweekly/engine/internal/domain"
)

// SMA returns the simple moving average of the last `period` closes. Bars
// must be ordered oldest-to-newest. Returns (0, false) on insufficient data.
func SMA(closes []float64, period int) (float64, bool) {
	if len(closes) < period {
		return 0, false
	}
	window := closes[len(closes)-period:]
	sum := 0.0
	for _, c := range window {
		sum += c
	}
	return sum / float64(period), true
}

// Slope is the per-day fractional slope of an SMA series over `period`
// bars: (sma_t - sma_{t-period}) / sma_{t-period} / period. This is the
// source's definition and is NOT a regression slope — the two are not
// interchangeable without recalibrating every threshold that reads it.
func Slope(smaSeries []float64, period int) (float64, bool) {
	if len(smaSeries) < period+1 {
		return 0, false
	}
	last := smaSeries[len(smaSeries)-1]
	prior := smaSeries[len(smaSeries)-1-period]
	if prior == 0 {
		return 0, false
	}
	return (last - prior) / prior / float64(period), true
}

// RSI14 computes Wilder's RSI(14) from a close-price series using Wilder's
// smoothing (an EMA with alpha=1/period applied to the gain/loss series).
func RSI14(closes []float64) (float64, bool) {
	return rsi(closes, 14)
}

func rsi(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = avgGain*(1-alpha) + gains[i]*alpha
		avgLoss = avgLoss*(1-alpha) + losses[i]*alpha
	}

	if avgLoss == 0 {
		return 100.0, true
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), true
}

// ATR14 computes Wilder's ATR(14) from a DailyBar series using Wilder's
// smoothing over the true-range series.
func ATR14(bars []domain.DailyBar) (float64, bool) {
	return atr(bars, 14)
}

func atr(bars []domain.DailyBar, period int) (float64, bool) {
	if len(bars) < period+1 {
		return 0, false
	}

	trueRanges := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		cur, prevClose := bars[i], bars[i-1].Close
		hl := cur.High - cur.Low
		hc := math.Abs(cur.High - prevClose)
		lc := math.Abs(cur.Low - prevClose)
		trueRanges = append(trueRanges, math.Max(hl, math.Max(hc, lc)))
	}

	atrVal := 0.0
	for i := 0; i < period; i++ {
		atrVal += trueRanges[i]
	}
	atrVal /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(trueRanges); i++ {
		atrVal = atrVal*(1-alpha) + trueRanges[i]*alpha
	}
	return atrVal, true
}

// EMA computes the exponential moving average series for the given period,
// returned aligned to the input. The series is seeded with values[0], so
// every entry is filled; the early entries are still warming up.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// MACDHist computes the MACD(12,26,9) histogram's latest value:
// histogram = MACD line (EMA12-EMA26) minus its 9-period signal EMA.
func MACDHist(closes []float64) (float64, bool) {
	const fast, slow, signalPeriod = 12, 26, 9
	if len(closes) < slow+signalPeriod {
		return 0, false
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}
	signal := EMA(macdLine, signalPeriod)

	last := len(closes) - 1
	return macdLine[last] - signal[last], true
}

// RealizedVol20 is the 20-day sample standard deviation of daily returns,
// the Vol20 figure consumed by the momentum vol-adjusted filter (2E) and
// the regime volatility subscore's fallback.
func RealizedVol20(closes []float64) (float64, bool) {
	const period = 20
	if len(closes) < period+1 {
		return 0, false
	}
	window := closes[len(closes)-period-1:]
	returns := make([]float64, period)
	for i := 1; i < len(window); i++ {
		returns[i-1] = (window[i] - window[i-1]) / window[i-1]
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance), true
}

// Compute builds the full Indicators record for a symbol from its ordered
// DailyBar history (oldest first). It requires at least 201 bars; callers
// with fewer bars should treat the symbol as having insufficient history
// per §7. Slope200 compares the SMA200 with its value 200 bars earlier, so
// it stays 0 until there are at least 400 bars.
func Compute(symbol string, bars []domain.DailyBar) (domain.Indicators, bool) {
	if len(bars) < 201 {
		return domain.Indicators{}, false
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	sma20Series := smaSeries(closes, 20)
	sma50Series := smaSeries(closes, 50)
	sma200Series := smaSeries(closes, 200)

	sma20, _ := SMA(closes, 20)
	sma50, _ := SMA(closes, 50)
	sma200, _ := SMA(closes, 200)
	atr14, _ := ATR14(bars)
	rsi14, _ := RSI14(closes)
	macdHist, _ := MACDHist(closes)
	vol20, _ := RealizedVol20(closes)
	slope20, _ := Slope(sma20Series, 20)
	slope50, _ := Slope(sma50Series, 50)
	slope200, _ := Slope(sma200Series, 200)

	return domain.Indicators{
		Symbol:   symbol,
		Date:     bars[len(bars)-1].Date,
		SMA20:    sma20,
		SMA50:    sma50,
		SMA200:   sma200,
		ATR14:    atr14,
		RSI14:    rsi14,
		MACDHist: macdHist,
		Vol20:    vol20,
		Slope20:  slope20,
		Slope50:  slope50,
		Slope200: slope200,
	}, true
}

// smaSeries returns the full rolling-SMA series for a close-price series,
// needed by Slope to compare the current SMA against its value `period`
// bars ago. Entries before the window has filled are left at zero.
func smaSeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) < period {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
