package orchestration

import (
	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain/consistency"
	"github.com/nseweekly/engine/internal/domain/execution"
	"github.com/nseweekly/engine/internal/domain/guards"
	"github.com/nseweekly/engine/internal/domain/liquidity"
	"github.com/nseweekly/engine/internal/domain/momentum"
	"github.com/nseweekly/engine/internal/domain/portfolio"
	"github.com/nseweekly/engine/internal/domain/recommendation"
	"github.com/nseweekly/engine/internal/domain/regime"
	"github.com/nseweekly/engine/internal/domain/risk"
	"github.com/nseweekly/engine/internal/domain/setup"
	"github.com/nseweekly/engine/internal/domain/universe"
)

// RunState is the shared scratchpad threaded through every stage of one
// weekly run. Each stage reads what earlier stages produced and writes
// its own output; nothing is returned out-of-band.
type RunState struct {
	Week   string
	Config *config.Config

	// S1: universe construction
	UniverseResult universe.BuildResult

	// C5: regime classification, run ahead of S3 scoring so every
	// downstream stage can read the week's regime.
	Regime regime.Detection

	// S2/S3/S4A: per-symbol momentum, consistency and liquidity scoring,
	// keyed by symbol.
	MomentumScores    map[string]momentum.Score
	ConsistencyScores map[string]consistency.Result
	LiquidityScores   map[string]liquidity.Result

	// S4B/S4C: setup detection and entry guard filtering.
	Setups       map[string]setup.Result
	GuardResults map[string]guards.AllGuardsResult

	// S5: position sizing per qualified symbol.
	Sizing map[string]risk.Result

	// S6: portfolio construction across sized candidates.
	Portfolio portfolio.Result

	// S7: Monday execution/gap decisions, populated only when the run
	// includes the execution-day check.
	GapDecisions map[string]execution.GapResult

	// S8: assembled, regime-scored recommendation cards for the week.
	Recommendation recommendation.Recommendation

	// Errs accumulates per-symbol failures that shouldn't abort the run
	// (e.g. one instrument's bars failed to fetch); stages append here
	// instead of failing the whole stage over a single bad symbol.
	Errs []SymbolError
}

// SymbolError associates a non-fatal per-symbol failure with the stage
// that produced it. RunState.Errs collects them; no stage reads them back
// or adds them to the recommendation cards.
type SymbolError struct {
	Stage  string
	Symbol string
	Err    error
}

// NewRunState starts a fresh scratchpad for the given week.
func NewRunState(week string, cfg *config.Config) *RunState {
	return &RunState{
		Week:              week,
		Config:            cfg,
		MomentumScores:    make(map[string]momentum.Score),
		ConsistencyScores: make(map[string]consistency.Result),
		LiquidityScores:   make(map[string]liquidity.Result),
		Setups:            make(map[string]setup.Result),
		GuardResults:      make(map[string]guards.AllGuardsResult),
		Sizing:            make(map[string]risk.Result),
		GapDecisions:      make(map[string]execution.GapResult),
	}
}
