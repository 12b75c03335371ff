package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/nseweekly/engine/internal/domain"
	"github.com/nseweekly/engine/internal/infrastructure/async"
)

// RawSource is the unwrapped upstream client a RateLimitedAdapter decorates
// with rate limiting, circuit breaking, and retry. It is the minimum
// surface an NSE data vendor integration has to implement.
type RawSource interface {
	FetchInstruments(ctx context.Context) ([]Instrument, error)
	FetchMTFList(ctx context.Context) (map[string]bool, error)
	FetchIndexConstituents(ctx context.Context, index string) (map[string]bool, error)
	FetchDailyBars(ctx context.Context, symbol string, horizonDays int) ([]domain.DailyBar, error)
	FetchBenchmark(ctx context.Context, horizonDays int) ([]domain.DailyBar, error)
	FetchHoldings(ctx context.Context, symbol string) (*Holdings, error)
	FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
}

// RateLimitedAdapter wraps a RawSource with the §4.2/§5 policy: a
// mandatory inter-call delay, a circuit breaker that trips on sustained
// failure, bounded concurrency for batch fetches, and retry with
// exponential backoff per §4.1's orchestration contract.
type RateLimitedAdapter struct {
	source  RawSource
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	pool    *async.ConcurrencyManager
}

// NewRateLimitedAdapter builds an adapter with the default 300ms inter-call
// delay (§4.2) and bounded concurrency of 8 (§5's "default 8").
func NewRateLimitedAdapter(source RawSource) *RateLimitedAdapter {
	return NewRateLimitedAdapterWithDelay(source, 300*time.Millisecond, 8)
}

// NewRateLimitedAdapterWithDelay builds an adapter with an explicit
// inter-call delay and concurrency bound, for providers whose published
// rate limits differ from the default.
func NewRateLimitedAdapterWithDelay(source RawSource, interCallDelay time.Duration, concurrency int) *RateLimitedAdapter {
	every := rate.Every(interCallDelay)

	settings := gobreaker.Settings{
		Name:     "marketdata-provider",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("market data circuit breaker state change")
		},
	}

	return &RateLimitedAdapter{
		source:  source,
		limiter: rate.NewLimiter(every, 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
		pool:    async.NewConcurrencyManager(concurrency, 5*time.Second),
	}
}

const maxRetries = 3

func (a *RateLimitedAdapter) call(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := a.breaker.Execute(fn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("market data fetch failed after %d attempts: %w", maxRetries, lastErr)
}

func (a *RateLimitedAdapter) FetchInstruments(ctx context.Context) ([]Instrument, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchInstruments(ctx) })
	if err != nil {
		return nil, err
	}
	return res.([]Instrument), nil
}

func (a *RateLimitedAdapter) FetchMTFList(ctx context.Context) (map[string]bool, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchMTFList(ctx) })
	if err != nil {
		return nil, err
	}
	return res.(map[string]bool), nil
}

func (a *RateLimitedAdapter) FetchIndexConstituents(ctx context.Context, index string) (map[string]bool, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchIndexConstituents(ctx, index) })
	if err != nil {
		return nil, err
	}
	return res.(map[string]bool), nil
}

func (a *RateLimitedAdapter) FetchDailyBars(ctx context.Context, symbol string, horizonDays int) ([]domain.DailyBar, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchDailyBars(ctx, symbol, horizonDays) })
	if err != nil {
		return nil, err
	}
	return res.([]domain.DailyBar), nil
}

// FetchDailyBarsBatch fetches many symbols under bounded concurrency. A
// symbol whose fetch ultimately fails is omitted from the result (§4.2:
// "omitted from that run's results, logged, not fatal").
func (a *RateLimitedAdapter) FetchDailyBarsBatch(ctx context.Context, symbols []string, horizonDays int) (map[string][]domain.DailyBar, error) {
	results := make(map[string][]domain.DailyBar, len(symbols))
	resultCh := make(chan struct {
		symbol string
		bars   []domain.DailyBar
	}, len(symbols))

	launched := 0
	for _, symbol := range symbols {
		symbol := symbol
		if err := a.pool.AcquireWorker(ctx); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("skipping symbol: concurrency acquire failed")
			continue
		}
		launched++
		go func() {
			start := time.Now()
			bars, err := a.FetchDailyBars(ctx, symbol, horizonDays)
			a.pool.ReleaseWorker(err == nil, time.Since(start))
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("symbol omitted from this run: fetch failed after retry")
				resultCh <- struct {
					symbol string
					bars   []domain.DailyBar
				}{symbol, nil}
				return
			}
			resultCh <- struct {
				symbol string
				bars   []domain.DailyBar
			}{symbol, bars}
		}()
	}

	for i := 0; i < launched; i++ {
		r := <-resultCh
		if r.bars != nil {
			results[r.symbol] = r.bars
		}
	}

	return results, nil
}

// FetchBenchmark has no omit-on-failure path: per §4.2, a benchmark fetch
// failure is fatal and the caller's stage must retry the whole stage.
func (a *RateLimitedAdapter) FetchBenchmark(ctx context.Context, horizonDays int) ([]domain.DailyBar, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchBenchmark(ctx, horizonDays) })
	if err != nil {
		return nil, fmt.Errorf("benchmark fetch failed (fatal, stage must retry): %w", err)
	}
	return res.([]domain.DailyBar), nil
}

func (a *RateLimitedAdapter) FetchHoldings(ctx context.Context, symbol string) (*Holdings, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchHoldings(ctx, symbol) })
	if err != nil {
		return nil, nil // optional data source: treat as absent, not an error
	}
	h, _ := res.(*Holdings)
	return h, nil
}

func (a *RateLimitedAdapter) FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	res, err := a.call(ctx, func() (any, error) { return a.source.FetchFundamentals(ctx, symbol) })
	if err != nil {
		return nil, nil // optional data source: treat as absent, not an error
	}
	f, _ := res.(*Fundamentals)
	return f, nil
}

var _ Provider = (*RateLimitedAdapter)(nil)
