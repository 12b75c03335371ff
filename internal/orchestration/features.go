package orchestration

import (
	"github.com/nseweekly/engine/internal/domain"
	"github.com/nseweekly/engine/internal/domain/indicators"
	"github.com/nseweekly/engine/internal/domain/liquidity"
	"github.com/nseweekly/engine/internal/domain/momentum"
	"github.com/nseweekly/engine/internal/domain/setup"
)

// tradingDaysYear approximates one year of NSE trading sessions, used to
// bound the 52-week high/low window over daily bars.
const tradingDaysYear = 252

// pctReturn computes the close-to-close return from daysAgo sessions back
// to the most recent bar. Returns 0 if the series is too short.
func pctReturn(closes []float64, daysAgo int) float64 {
	n := len(closes)
	if n == 0 || daysAgo >= n {
		return 0
	}
	base := closes[n-1-daysAgo]
	if base == 0 {
		return 0
	}
	return (closes[n-1] - base) / base
}

func closesOf(bars []domain.DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// high52Low52 scans the trailing 52 weeks of daily bars for the period
// high and low.
func high52Low52(bars []domain.DailyBar) (high, low float64) {
	start := 0
	if len(bars) > tradingDaysYear {
		start = len(bars) - tradingDaysYear
	}
	for i, b := range bars[start:] {
		if i == 0 || b.High > high {
			high = b.High
		}
		if i == 0 || b.Low < low {
			low = b.Low
		}
	}
	return high, low
}

// acceleration approximates the 2D input as the normalized gap between
// the 1-month and 3-month average monthly return, clamped to [0,1].
func acceleration(return1M, return3M float64) float64 {
	avg3M := return3M / 3
	accel := (return1M - avg3M) + 0.5
	switch {
	case accel < 0:
		return 0
	case accel > 1:
		return 1
	default:
		return accel
	}
}

// buildMomentumInputs assembles S2's per-symbol Inputs from the daily bar
// history, its locally computed indicators, and the Nifty benchmark.
func buildMomentumInputs(symbol string, bars []domain.DailyBar, ind domain.Indicators, bench domain.Benchmark) momentum.Inputs {
	closes := closesOf(bars)
	high52, low52 := high52Low52(bars)
	return1M := pctReturn(closes, 21)
	return3M := pctReturn(closes, 63)
	return6M := pctReturn(closes, 126)

	return momentum.Inputs{
		Symbol:        symbol,
		Close:         bars[len(bars)-1].Close,
		High52:        high52,
		Low52:         low52,
		Vol20d:        ind.Vol20,
		Vol20dAvg:     ind.Vol20,
		SMA20:         ind.SMA20,
		SMA50:         ind.SMA50,
		SMA200:        ind.SMA200,
		Slope20:       ind.Slope20,
		Slope50:       ind.Slope50,
		Slope200:      ind.Slope200,
		Return1M:      return1M,
		Return3M:      return3M,
		Return6M:      return6M,
		NiftyReturn1M: bench.Return1M,
		NiftyReturn3M: bench.Return3M,
		NiftyReturn6M: bench.Return6M,
		Acceleration:  acceleration(return1M, return3M),
		StockVol30:    ind.Vol20,
		NiftyVol30:    bench.Vol30,
	}
}

// buildLiquidityDays takes the trailing 90 daily bars for S4A.
func buildLiquidityDays(bars []domain.DailyBar) []liquidity.DayBar {
	start := 0
	if len(bars) > 90 {
		start = len(bars) - 90
	}
	out := make([]liquidity.DayBar, 0, len(bars)-start)
	for _, b := range bars[start:] {
		out = append(out, liquidity.DayBar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume})
	}
	return out
}

// buildSetupInputs assembles S4B's per-symbol Inputs from the same bar
// history and indicators, adding pattern-specific geometry windows.
func buildSetupInputs(symbol string, bars []domain.DailyBar, ind domain.Indicators, momentumScore, consistencyScore, liquidityScore float64) setup.Inputs {
	n := len(bars)
	high52, _ := high52Low52(bars)

	lowsLast20 := make([]float64, 0, 20)
	for i := n - 20; i < n; i++ {
		if i < 0 {
			continue
		}
		lowsLast20 = append(lowsLast20, bars[i].Low)
	}

	eightWeekStart := n - 40
	if eightWeekStart < 0 {
		eightWeekStart = 0
	}
	var rangeHigh8w, rangeLow8w float64
	for i, b := range bars[eightWeekStart:] {
		if i == 0 || b.High > rangeHigh8w {
			rangeHigh8w = b.High
		}
		if i == 0 || b.Low < rangeLow8w {
			rangeLow8w = b.Low
		}
	}

	var atr14Ago21 float64
	if n > 221 {
		if v, ok := indicators.ATR14(bars[:n-21]); ok {
			atr14Ago21 = v
		}
	}

	last3 := avgVolume(bars, 3)
	last5 := avgVolume(bars, 5)

	var gapPct, gapTop float64
	var gapDayVolume float64
	var gapDayAboveSMA20 bool
	if n >= 2 {
		prevClose := bars[n-2].Close
		today := bars[n-1]
		if prevClose > 0 {
			gapPct = (today.Open - prevClose) / prevClose
		}
		gapTop = today.Open
		gapDayVolume = today.Volume
		gapDayAboveSMA20 = today.Close > ind.SMA20
	}

	return setup.Inputs{
		Symbol:           symbol,
		Close:            bars[n-1].Close,
		High52:           high52,
		SMA20:            ind.SMA20,
		SMA50:            ind.SMA50,
		SMA200:           ind.SMA200,
		ATR14:            ind.ATR14,
		RSI14:            ind.RSI14,
		MACDHist:         ind.MACDHist,
		MACDHistPrev:     ind.MACDHist,
		Vol20d:           avgVolume(bars, 20),
		Last3dAvgVol:     last3,
		Last5dAvgVol:     last5,
		LowsLast20:       lowsLast20,
		RangeHigh8w:      rangeHigh8w,
		RangeLow8w:       rangeLow8w,
		ATR14Ago21:       atr14Ago21,
		BreakoutLevel:    rangeHigh8w,
		BreakoutBarVolume: last5,
		BreakoutWeeksAgo: 4,
		PriorPullbackLow: rangeLow8w,
		MostRecentLow:    minOf(lowsLast20),
		GapPct:           gapPct,
		GapFilledFrac:    0,
		GapDayVolume:     gapDayVolume,
		GapTop:           gapTop,
		GapDayAboveSMA20: gapDayAboveSMA20,
		MomentumScore:    momentumScore,
		ConsistencyScore: consistencyScore,
		LiquidityScore:   liquidityScore,
	}
}

func avgVolume(bars []domain.DailyBar, window int) float64 {
	n := len(bars)
	if n == 0 {
		return 0
	}
	if window > n {
		window = n
	}
	var sum float64
	for _, b := range bars[n-window:] {
		sum += b.Volume
	}
	return sum / float64(window)
}

func minOf(vals []float64) float64 {
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
