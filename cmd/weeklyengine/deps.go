package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/nseweekly/engine/internal/cache"
	appconfig "github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
	"github.com/nseweekly/engine/internal/domain/guards"
	infradb "github.com/nseweekly/engine/internal/infrastructure/db"
	"github.com/nseweekly/engine/internal/marketdata"
	"github.com/nseweekly/engine/internal/orchestration"
)

// runtimeDeps bundles everything a subcommand wires up: config, the
// database manager (so its Health() is available to the HTTP server),
// the cache, and the orchestration dependencies BuildPipeline consumes.
type runtimeDeps struct {
	config  *appconfig.Config
	db      *infradb.Manager
	cache   cache.Cache
	ledger  orchestration.Ledger
	pipeDeps orchestration.Dependencies
}

// unconfiguredSource is the placeholder marketdata.RawSource used until a
// real NSE vendor integration is wired in; providers are an external
// collaborator this system only specifies the data shapes for, not an
// implementation.
type unconfiguredSource struct{}

func (unconfiguredSource) FetchInstruments(ctx context.Context) ([]marketdata.Instrument, error) {
	return nil, fmt.Errorf("no market-data provider configured: implement marketdata.RawSource and wire it in cmd/weeklyengine")
}

func (unconfiguredSource) FetchMTFList(ctx context.Context) (map[string]bool, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

func (unconfiguredSource) FetchIndexConstituents(ctx context.Context, index string) (map[string]bool, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

func (unconfiguredSource) FetchDailyBars(ctx context.Context, symbol string, horizonDays int) ([]domain.DailyBar, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

func (unconfiguredSource) FetchBenchmark(ctx context.Context, horizonDays int) ([]domain.DailyBar, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

func (unconfiguredSource) FetchHoldings(ctx context.Context, symbol string) (*marketdata.Holdings, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

func (unconfiguredSource) FetchFundamentals(ctx context.Context, symbol string) (*marketdata.Fundamentals, error) {
	return nil, fmt.Errorf("no market-data provider configured")
}

// buildRuntimeDeps loads configuration and wires the database, cache,
// market-data adapter, guard evaluator, and idempotency ledger every
// subcommand needs.
func buildRuntimeDeps() (*runtimeDeps, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbCfg := infradb.DefaultConfig()
	appCfg, err := infradb.LoadAppConfig(os.Getenv("WEEKLYENGINE_CONFIG"))
	if err == nil && appCfg != nil {
		dbCfg = appCfg.Database
	}
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		dbCfg.DSN = dsn
		dbCfg.Enabled = true
	}

	dbManager, err := infradb.NewManager(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	repo := dbManager.Repository()
	if repo == nil {
		dbManager.Close()
		return nil, fmt.Errorf("database persistence is disabled (set PG_DSN / PG_ENABLED=true)")
	}

	provider := marketdata.NewRateLimitedAdapter(unconfiguredSource{})
	guardEval := guards.NewEvaluator(guards.DefaultGuardConfig())

	var ledger orchestration.Ledger
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		ledger = orchestration.NewRedisLedger(redis.NewClient(&redis.Options{Addr: addr}))
	} else {
		ledger = orchestration.NewMemoryLedger()
	}

	return &runtimeDeps{
		config: cfg,
		db:     dbManager,
		cache:  cache.NewAuto(),
		ledger: ledger,
		pipeDeps: orchestration.Dependencies{
			Config:   cfg,
			Provider: provider,
			Repo:     *repo,
			Guards:   guardEval,
		},
	}, nil
}

func (d *runtimeDeps) close() {
	if d.db != nil {
		d.db.Close()
	}
}
