// Package marketdata implements C1: the daily-OHLCV provider contract, its
// rate-limited adapter, and weekly resampling (§4.2). Indicators are
// computed from the fetched bars by package domain/indicators.
package marketdata

import (
	"context"
	"time"

	"github.com/nseweekly/engine/internal/domain"
)

// Instrument is one row of the NSE instruments list provider response
// (§6 outbound provider shapes).
type Instrument struct {
	Symbol       string
	ISIN         string
	Segment      string
	InstrumentType string
	LotSize      int
	TickSize     float64
}

// Holdings is the optional institutional-holdings refresh (§6).
type Holdings struct {
	FIIPct           float64
	DIIPct           float64
	PromoterPledgePct float64
	FIINetChange30d  float64
}

// Fundamentals is the optional monthly fundamentals refresh (§6).
type Fundamentals struct {
	EPSQoQGrowth    float64
	RevenueYoYGrowth float64
	ROCE            float64
	ROE             float64
	DebtToEquity    float64
	OperatingMargin float64
	FCFYield        float64
	CashEPSVsReportedEPS float64
}

// Provider is the market-data adapter contract C1 exposes to the
// orchestration layer. Implementations are rate-limited and
// circuit-breaker-wrapped; the interface itself carries no I/O policy.
type Provider interface {
	FetchInstruments(ctx context.Context) ([]Instrument, error)
	FetchMTFList(ctx context.Context) (map[string]bool, error)
	FetchIndexConstituents(ctx context.Context, index string) (map[string]bool, error)

	// FetchDailyBars returns one symbol's DailyBar series over the
	// trailing horizonDays as a fully fetched slice; it is not a lazy or
	// streaming sequence.
	FetchDailyBars(ctx context.Context, symbol string, horizonDays int) ([]domain.DailyBar, error)

	// FetchDailyBarsBatch fetches many symbols, honoring the provider's
	// mandatory inter-call delay between each underlying request. A
	// symbol whose fetch fails after retry is omitted from the result
	// map (§4.2 failure semantics), not returned as an error.
	FetchDailyBarsBatch(ctx context.Context, symbols []string, horizonDays int) (map[string][]domain.DailyBar, error)

	FetchBenchmark(ctx context.Context, horizonDays int) ([]domain.DailyBar, error)

	FetchHoldings(ctx context.Context, symbol string) (*Holdings, error)
	FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
}

// ResampleWeekly derives WeeklyBar records from a DailyBar series using
// ISO week boundaries (Monday-Friday); a partial final week (one whose
// Friday hasn't yet occurred in the series) is dropped.
func ResampleWeekly(symbol string, bars []domain.DailyBar) []domain.WeeklyBar {
	if len(bars) == 0 {
		return nil
	}

	var weeks []domain.WeeklyBar
	var cur *domain.WeeklyBar
	var curWeekStart time.Time

	flush := func() {
		if cur != nil {
			weeks = append(weeks, *cur)
		}
	}

	for _, b := range bars {
		weekStart := mondayOf(b.Date)
		if cur == nil || !weekStart.Equal(curWeekStart) {
			flush()
			curWeekStart = weekStart
			w := domain.WeeklyBar{
				Symbol: symbol,
				Week:   weekStart,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			cur = &w
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}

	// Drop a partial final week: one whose last bar isn't a Friday (or
	// the week hasn't run its full Mon-Fri course in the input series).
	if cur != nil {
		lastBar := bars[len(bars)-1]
		if lastBar.Date.Weekday() == time.Friday {
			weeks = append(weeks, *cur)
		}
	}

	return weeks
}

func mondayOf(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7 // Sunday: treat as end of the prior week for ISO purposes
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -(offset - 1))
}
