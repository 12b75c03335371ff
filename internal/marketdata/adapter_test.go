package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nseweekly/engine/internal/domain"
)

type fakeSource struct {
	failSymbols map[string]bool
	benchmarkFails bool
}

func (f *fakeSource) FetchInstruments(ctx context.Context) ([]Instrument, error) {
	return []Instrument{{Symbol: "X"}}, nil
}
func (f *fakeSource) FetchMTFList(ctx context.Context) (map[string]bool, error) {
	return map[string]bool{"X": true}, nil
}
func (f *fakeSource) FetchIndexConstituents(ctx context.Context, index string) (map[string]bool, error) {
	return map[string]bool{"X": true}, nil
}
func (f *fakeSource) FetchDailyBars(ctx context.Context, symbol string, horizonDays int) ([]domain.DailyBar, error) {
	if f.failSymbols[symbol] {
		return nil, errors.New("simulated provider failure")
	}
	return []domain.DailyBar{{Symbol: symbol, Date: time.Now(), Close: 100}}, nil
}
func (f *fakeSource) FetchBenchmark(ctx context.Context, horizonDays int) ([]domain.DailyBar, error) {
	if f.benchmarkFails {
		return nil, errors.New("simulated benchmark outage")
	}
	return []domain.DailyBar{{Symbol: "NIFTY", Close: 24000}}, nil
}
func (f *fakeSource) FetchHoldings(ctx context.Context, symbol string) (*Holdings, error) {
	return &Holdings{FIIPct: 20}, nil
}
func (f *fakeSource) FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	return &Fundamentals{ROCE: 18}, nil
}

func TestFetchDailyBarsBatch_OmitsFailedSymbols(t *testing.T) {
	src := &fakeSource{failSymbols: map[string]bool{"BAD": true}}
	adapter := NewRateLimitedAdapterWithDelay(src, time.Millisecond, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := adapter.FetchDailyBarsBatch(ctx, []string{"GOOD1", "BAD", "GOOD2"}, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := results["BAD"]; ok {
		t.Errorf("expected BAD to be omitted from batch results after retry exhaustion")
	}
	if _, ok := results["GOOD1"]; !ok {
		t.Errorf("expected GOOD1 in batch results")
	}
	if _, ok := results["GOOD2"]; !ok {
		t.Errorf("expected GOOD2 in batch results")
	}
}

func TestFetchBenchmark_FailureIsFatal(t *testing.T) {
	src := &fakeSource{benchmarkFails: true}
	adapter := NewRateLimitedAdapterWithDelay(src, time.Millisecond, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := adapter.FetchBenchmark(ctx, 400)
	if err == nil {
		t.Fatalf("expected benchmark fetch failure to surface as an error")
	}
}
