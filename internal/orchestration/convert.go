package orchestration

import (
	"time"

	"github.com/nseweekly/engine/internal/domain"
	"github.com/nseweekly/engine/internal/domain/indicators"
	"github.com/nseweekly/engine/internal/persistence"
)

// historyRange bounds a bar-history lookup to roughly the last two years,
// comfortably covering the 52-week and 201-bar indicator windows.
func historyRange() persistence.TimeRange {
	now := time.Now().UTC()
	return persistence.TimeRange{From: now.AddDate(-2, 0, 0), To: now}
}

func toRepoBars(symbol string, bars []domain.DailyBar) []persistence.DailyBar {
	out := make([]persistence.DailyBar, len(bars))
	for i, b := range bars {
		out[i] = persistence.DailyBar{
			Symbol: symbol,
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

func fromRepoBars(symbol string, bars []persistence.DailyBar) []domain.DailyBar {
	out := make([]domain.DailyBar, len(bars))
	for i, b := range bars {
		out[i] = domain.DailyBar{
			Symbol: symbol,
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

func indicatorsCompute(symbol string, bars []domain.DailyBar) (domain.Indicators, bool) {
	return indicators.Compute(symbol, bars)
}

func indicatorsATR14(bars []domain.DailyBar) (float64, bool) {
	return indicators.ATR14(bars)
}

func indicatorsComputeFromRepoBars(bars []persistence.DailyBar) (domain.Indicators, bool) {
	if len(bars) == 0 {
		return domain.Indicators{}, false
	}
	return indicators.Compute(bars[0].Symbol, fromRepoBars(bars[0].Symbol, bars))
}

// benchmarkFrom derives the Nifty reference record S2 reads from the
// benchmark's own daily bar history.
func benchmarkFrom(bars []domain.DailyBar) domain.Benchmark {
	if len(bars) == 0 {
		return domain.Benchmark{}
	}
	closes := closesOf(bars)
	ind, _ := indicators.Compute("NIFTY", bars)
	atr14, _ := indicators.ATR14(bars)

	return domain.Benchmark{
		Date:     bars[len(bars)-1].Date,
		Close:    closes[len(closes)-1],
		Return1M: pctReturn(closes, 21),
		Return3M: pctReturn(closes, 63),
		Return6M: pctReturn(closes, 126),
		ATR14:    atr14,
		Vol30:    ind.Vol20,
	}
}

// weeklyReturns converts a WeeklyBar series into close-to-close fractional
// returns, oldest first, as S3's Evaluate expects.
func weeklyReturns(weeks []domain.WeeklyBar) []float64 {
	if len(weeks) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(weeks)-1)
	for i := 1; i < len(weeks); i++ {
		prev := weeks[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (weeks[i].Close-prev)/prev)
	}
	return returns
}

// dailyReturns returns the trailing window of close-to-close daily
// fractional returns, used as the portfolio correlation filter's input.
func dailyReturns(bars []persistence.DailyBar, window int) []float64 {
	n := len(bars)
	if n < 2 {
		return nil
	}
	start := 1
	if n > window {
		start = n - window
	}
	returns := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	return returns
}
