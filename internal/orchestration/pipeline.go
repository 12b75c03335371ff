package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
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
	"github.com/nseweekly/engine/internal/marketdata"
	"github.com/nseweekly/engine/internal/persistence"
)

// Stage names, in the fixed order a weekly run executes them. C5 runs
// ahead of S3 so every scoring stage after it can read the week's regime.
const (
	StageUniverse      = "S1_universe"
	StageRegime        = "C5_regime"
	StageMomentum      = "S2_momentum"
	StageConsistency   = "S3_consistency"
	StageLiquidity     = "S4A_liquidity"
	StageSetup         = "S4B_setup"
	StageGuards        = "S4C_guards"
	StageRisk          = "S5_risk"
	StagePortfolio     = "S6_portfolio"
	StageExecution     = "S7_execution"
	StageRecommendation = "S8_recommendation"
)

// historyDays is how far back daily bars are fetched: >1 year so S2's
// 52-week high/low and the 201-bar indicator warmup both have headroom.
const historyDays = 420

// Dependencies bundles everything the standard pipeline's stage closures
// need. Nothing here is mutated once a run starts.
type Dependencies struct {
	Config   *config.Config
	Provider marketdata.Provider
	Repo     persistence.Repository
	Guards   *guards.Evaluator
}

// BuildPipeline wires the standard S1-S8 stage sequence against deps. The
// returned Stages are handed to NewRunner, which adds idempotency and
// timing around each.
func BuildPipeline(deps Dependencies) []Stage {
	return []Stage{
		{Name: StageUniverse, Run: deps.runUniverse},
		{Name: StageRegime, Run: deps.runRegime},
		{Name: StageMomentum, Run: deps.runMomentum},
		{Name: StageConsistency, Run: deps.runConsistency},
		{Name: StageLiquidity, Run: deps.runLiquidity},
		{Name: StageSetup, Run: deps.runSetup},
		{Name: StageGuards, Run: deps.runGuards},
		{Name: StageRisk, Run: deps.runRisk},
		{Name: StagePortfolio, Run: deps.runPortfolio},
		{Name: StageExecution, Run: deps.runExecution},
		{Name: StageRecommendation, Run: deps.runRecommendation},
	}
}

func (d Dependencies) runUniverse(ctx context.Context, rs *RunState) error {
	raw, err := d.Provider.FetchInstruments(ctx)
	if err != nil {
		return fmt.Errorf("fetch instruments: %w", err)
	}
	mtf, err := d.Provider.FetchMTFList(ctx)
	if err != nil {
		return fmt.Errorf("fetch mtf list: %w", err)
	}

	indices := []string{"nifty50", "nifty100", "nifty200", "nifty500"}
	memberships := make(map[string]map[string]bool, len(indices))
	for _, idx := range indices {
		members, err := d.Provider.FetchIndexConstituents(ctx, idx)
		if err != nil {
			return fmt.Errorf("fetch %s constituents: %w", idx, err)
		}
		memberships[idx] = members
	}

	existing, err := d.Repo.Instruments.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list existing instruments: %w", err)
	}
	previouslyActive := make(map[string]bool, len(existing))
	for _, e := range existing {
		previouslyActive[e.Symbol] = e.Tier != string(domain.TierD)
	}

	instruments := make([]universe.Instrument, 0, len(raw))
	for _, r := range raw {
		instruments = append(instruments, universe.Instrument{
			Symbol:     r.Symbol,
			ISIN:       r.ISIN,
			LotSize:    r.LotSize,
			IsMTF:      mtf[r.Symbol],
			InNifty50:  memberships["nifty50"][r.Symbol],
			InNifty100: memberships["nifty100"][r.Symbol],
			InNifty200: memberships["nifty200"][r.Symbol],
			InNifty500: memberships["nifty500"][r.Symbol],
		})
	}

	result := universe.Build(instruments, previouslyActive, d.Config.Universe)
	rs.UniverseResult = result

	records := make([]persistence.Instrument, 0, len(result.Stocks))
	for _, s := range result.Stocks {
		records = append(records, persistence.Instrument{
			Symbol:      s.Symbol,
			ISIN:        s.ISIN,
			Name:        s.Name,
			Sector:      s.Sector,
			LotSize:     s.LotSize,
			Tier:        string(s.Tier),
			MTFEligible: s.IsMTF,
			UpdatedAt:   time.Now().UTC(),
		})
	}
	if err := d.Repo.Instruments.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("persist universe: %w", err)
	}

	log.Info().Int("active", result.ActiveCount).Int("total", result.TotalInstruments).Msg("universe built")
	return nil
}

func (d Dependencies) runRegime(ctx context.Context, rs *RunState) error {
	benchBars, err := d.Provider.FetchBenchmark(ctx, historyDays)
	if err != nil {
		return fmt.Errorf("fetch benchmark: %w", err)
	}
	if len(benchBars) < 201 {
		return fmt.Errorf("insufficient benchmark history: %d bars", len(benchBars))
	}

	ind, _ := indicatorsCompute("NIFTY", benchBars)
	closes := closesOf(benchBars)

	var above200, above50 int
	symbols := activeSymbols(rs)
	for _, sym := range symbols {
		bars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		if err != nil || len(bars) == 0 {
			continue
		}
		last := bars[len(bars)-1]
		if symInd, ok := indicatorsComputeFromRepoBars(bars); ok {
			if last.Close > symInd.SMA200 {
				above200++
			}
			if last.Close > symInd.SMA50 {
				above50++
			}
		}
	}
	total := len(symbols)
	pctAbove200, pctAbove50 := 0.0, 0.0
	if total > 0 {
		pctAbove200 = float64(above200) / float64(total)
		pctAbove50 = float64(above50) / float64(total)
	}

	in := regime.Inputs{
		NiftyClose:     closes[len(closes)-1],
		NiftySMA20:     ind.SMA20,
		NiftySMA50:     ind.SMA50,
		NiftySMA200:    ind.SMA200,
		NiftySlope20:   ind.Slope20,
		NiftySlope50:   ind.Slope50,
		NiftySlope200:  ind.Slope200,
		PctAbove200DMA: pctAbove200,
		PctAbove50DMA:  pctAbove50,
		RealizedVol20:  ind.Vol20,
	}

	rs.Regime = regime.Classify(rs.Week, in, time.Now().UTC())
	log.Info().Str("regime", string(rs.Regime.State)).Float64("composite", rs.Regime.Composite).Msg("regime classified")
	return nil
}

func activeSymbols(rs *RunState) []string {
	symbols := make([]string, 0, len(rs.UniverseResult.Stocks))
	for _, s := range rs.UniverseResult.Stocks {
		// Active Tier D stocks (MTF- or index-listed, quality below 60)
		// stay out of the scored set.
		if s.Active && s.Tier != domain.TierD {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols
}

func (d Dependencies) runMomentum(ctx context.Context, rs *RunState) error {
	benchBars, err := d.Provider.FetchBenchmark(ctx, historyDays)
	if err != nil {
		return fmt.Errorf("fetch benchmark: %w", err)
	}
	bench := benchmarkFrom(benchBars)

	symbols := activeSymbols(rs)
	barsBySymbol, err := d.Provider.FetchDailyBarsBatch(ctx, symbols, historyDays)
	if err != nil {
		return fmt.Errorf("fetch daily bars batch: %w", err)
	}

	for _, sym := range symbols {
		bars, ok := barsBySymbol[sym]
		if !ok || len(bars) < 201 {
			rs.Errs = append(rs.Errs, SymbolError{Stage: StageMomentum, Symbol: sym, Err: fmt.Errorf("insufficient bar history")})
			continue
		}
		if err := d.Repo.Bars.InsertBatch(ctx, toRepoBars(sym, bars)); err != nil {
			rs.Errs = append(rs.Errs, SymbolError{Stage: StageMomentum, Symbol: sym, Err: err})
			continue
		}

		ind, ok := indicatorsCompute(sym, bars)
		if !ok {
			continue
		}

		in := buildMomentumInputs(sym, bars, ind, bench)
		score := momentum.Evaluate(in)
		score.Symbol = sym
		score.Week = rs.Week
		score.CalculatedAt = time.Now().UTC()
		rs.MomentumScores[sym] = score
	}

	log.Info().Int("scored", len(rs.MomentumScores)).Msg("momentum scored")
	return nil
}

func (d Dependencies) runConsistency(ctx context.Context, rs *RunState) error {
	band := rs.Config.Thresholds.ForRegime(config.Regime(rs.Regime.State))

	raw := make(map[string]float64, len(rs.MomentumScores))
	weeklyReturnsBySymbol := make(map[string][]float64, len(rs.MomentumScores))

	for sym := range rs.MomentumScores {
		bars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		if err != nil || len(bars) == 0 {
			continue
		}
		weekly := marketdata.ResampleWeekly(sym, fromRepoBars(sym, bars))
		returns := weeklyReturns(weekly)
		weeklyReturnsBySymbol[sym] = returns

		result, ok := consistency.Evaluate(sym, returns, 0, band.Consistency)
		if ok {
			raw[sym] = result.ConsistencyScore
		}
	}

	ranks := percentileRanks(raw)

	for sym, returns := range weeklyReturnsBySymbol {
		result, ok := consistency.Evaluate(sym, returns, ranks[sym], band.Consistency)
		if !ok {
			continue
		}
		result.Symbol = sym
		result.Week = rs.Week
		result.CalculatedAt = time.Now().UTC()
		rs.ConsistencyScores[sym] = result
	}

	log.Info().Int("scored", len(rs.ConsistencyScores)).Msg("consistency scored")
	return nil
}

func (d Dependencies) runLiquidity(ctx context.Context, rs *RunState) error {
	for sym := range rs.ConsistencyScores {
		bars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		if err != nil || len(bars) < 90 {
			continue
		}
		days := buildLiquidityDays(fromRepoBars(sym, bars))
		result, ok := liquidity.Evaluate(sym, days)
		if !ok {
			continue
		}
		result.Symbol = sym
		result.Week = rs.Week
		result.CalculatedAt = time.Now().UTC()
		rs.LiquidityScores[sym] = result
	}

	for sym, mScore := range rs.MomentumScores {
		cScore, hasC := rs.ConsistencyScores[sym]
		lScore, hasL := rs.LiquidityScores[sym]
		if !hasC || !hasL {
			continue
		}
		if err := d.Repo.Scores.Upsert(ctx, persistence.WeeklyScore{
			Symbol:           sym,
			Week:             rs.Week,
			Regime:           string(rs.Regime.State),
			MomentumScore:    mScore.Value,
			ConsistencyScore: cScore.FinalScore,
			ConsistencyOK:    cScore.Qualifies,
			LiquidityScore:   lScore.Score,
			LiquidityOK:      lScore.Qualifies,
			CalculatedAt:     time.Now().UTC(),
		}); err != nil {
			rs.Errs = append(rs.Errs, SymbolError{Stage: StageLiquidity, Symbol: sym, Err: err})
		}
	}

	log.Info().Int("scored", len(rs.LiquidityScores)).Msg("liquidity scored")
	return nil
}

func (d Dependencies) runSetup(ctx context.Context, rs *RunState) error {
	band := rs.Config.Thresholds.ForRegime(config.Regime(rs.Regime.State))

	for sym, mScore := range rs.MomentumScores {
		cScore, hasC := rs.ConsistencyScores[sym]
		lScore, hasL := rs.LiquidityScores[sym]
		if !hasC || !hasL || !cScore.Qualifies || !lScore.Qualifies {
			continue
		}

		repoBars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		if err != nil || len(repoBars) < 222 {
			continue
		}
		bars := fromRepoBars(sym, repoBars)
		ind, ok := indicatorsCompute(sym, bars)
		if !ok {
			continue
		}

		in := buildSetupInputs(sym, bars, ind, mScore.Value, cScore.FinalScore, lScore.Score)
		result, ok := setup.Detect(in, band.Setup)
		if !ok {
			continue
		}
		result.Symbol = sym
		result.Week = rs.Week
		result.CalculatedAt = time.Now().UTC()
		rs.Setups[sym] = result

		if err := d.Repo.Setups.Upsert(ctx, persistence.SetupRecord{
			Symbol:           sym,
			Week:             rs.Week,
			SetupType:        string(result.SetupType),
			EntryLow:         result.EntryLow,
			EntryHigh:        result.EntryHigh,
			Stop:             result.Stop,
			StopMethod:       result.StopMethod,
			Target1:          result.Target1,
			Target2:          result.Target2,
			RR:               result.RR,
			QualityComposite: result.QualityComposite,
			CalculatedAt:     time.Now().UTC(),
		}); err != nil {
			rs.Errs = append(rs.Errs, SymbolError{Stage: StageSetup, Symbol: sym, Err: err})
		}
	}

	log.Info().Int("setups", len(rs.Setups)).Msg("setups detected")
	return nil
}

func (d Dependencies) runGuards(ctx context.Context, rs *RunState) error {
	for sym, s := range rs.Setups {
		mScore := rs.MomentumScores[sym]

		repoBars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		if err != nil || len(repoBars) == 0 {
			continue
		}
		last := repoBars[len(repoBars)-1]
		daysAge := int(time.Since(last.Date).Hours() / 24)
		priceChange := last.Close - s.EntryHigh

		var rsi14, atr14, accel float64
		if ind, ok := indicatorsComputeFromRepoBars(repoBars); ok {
			rsi14, atr14 = ind.RSI14, ind.ATR14
			if ind.MACDHist > 0 {
				accel = 0.6
			}
		}

		result := d.Guards.EvaluateAll(guards.AllGuardsInputs{
			Fatigue: guards.FatigueInputs{
				Symbol:        sym,
				MomentumScore: mScore.Value,
				RSI14:         rsi14,
				Acceleration:  accel,
				Regime:        config.Regime(rs.Regime.State),
			},
			Freshness: guards.FreshnessInputs{
				Symbol:      sym,
				DaysAge:     daysAge,
				PriceChange: priceChange,
				ATR14:       atr14,
				Regime:      config.Regime(rs.Regime.State),
			},
		})
		rs.GuardResults[sym] = result
	}

	blocked := 0
	for _, r := range rs.GuardResults {
		if !r.AllowEntry {
			blocked++
		}
	}
	log.Info().Int("evaluated", len(rs.GuardResults)).Int("blocked", blocked).Msg("entry guards evaluated")
	return nil
}

func (d Dependencies) runRisk(ctx context.Context, rs *RunState) error {
	stats := risk.StatsOrPrior(risk.SystemStats{}, 0, rs.Config.Risk)
	band := rs.Config.Thresholds.ForRegime(config.Regime(rs.Regime.State))

	var niftyATR14 float64
	if benchBars, err := d.Provider.FetchBenchmark(ctx, historyDays); err == nil {
		niftyATR14, _ = indicatorsATR14(benchBars)
	}

	for sym, s := range rs.Setups {
		guardResult, ok := rs.GuardResults[sym]
		if !ok || !guardResult.AllowEntry {
			continue
		}
		mid := (s.EntryLow + s.EntryHigh) / 2

		var stockATR14 float64
		if repoBars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange()); err == nil {
			if ind, ok := indicatorsComputeFromRepoBars(repoBars); ok {
				stockATR14 = ind.ATR14
			}
		}

		sized := risk.Size(risk.Inputs{
			Symbol:        sym,
			MidEntry:      mid,
			Stop:          s.Stop,
			RR:            s.RR,
			NiftyATR14:    niftyATR14,
			StockATR14:    stockATR14,
			RegimeMult:    rs.Regime.Multiplier,
			RegimeRRFloor: band.Setup.RRFloor,
		}, stats, rs.Config.Risk)

		sized.Symbol = sym
		sized.Week = rs.Week
		sized.CalculatedAt = time.Now().UTC()
		rs.Sizing[sym] = sized
	}

	log.Info().Int("sized", len(rs.Sizing)).Msg("positions sized")
	return nil
}

func (d Dependencies) runPortfolio(ctx context.Context, rs *RunState) error {
	band := rs.Config.Thresholds.ForRegime(config.Regime(rs.Regime.State))

	candidates := make([]portfolio.Candidate, 0, len(rs.Sizing))
	for sym, sized := range rs.Sizing {
		if !sized.Qualifies {
			continue
		}
		setupResult := rs.Setups[sym]
		var sector string
		for _, st := range rs.UniverseResult.Stocks {
			if st.Symbol == sym {
				sector = st.Sector
				break
			}
		}

		bars, err := d.Repo.Bars.ListBySymbol(ctx, sym, historyRange())
		var returns []float64
		if err == nil {
			returns = dailyReturns(bars, 60)
		}

		candidates = append(candidates, portfolio.Candidate{
			Symbol:           sym,
			Sector:           sector,
			QualityComposite: setupResult.QualityComposite,
			PositionValue:    sized.FinalRisk,
			DailyReturns60d:  returns,
		})
	}

	rs.Portfolio = portfolio.Build(rs.Week, candidates, rs.Config.Risk.PortfolioValue, band.Portfolio, rs.Regime.Multiplier)

	positions := make(map[string]interface{}, len(rs.Portfolio.Positions))
	for _, p := range rs.Portfolio.Positions {
		positions[p.Symbol] = p
	}

	if err := d.Repo.Portfolios.Upsert(ctx, persistence.PortfolioRecord{
		Week:             rs.Week,
		Positions:        positions,
		SectorAllocation: rs.Portfolio.SectorAllocation,
		AllocatedPct:     rs.Portfolio.AllocatedPct,
		CashPct:          rs.Portfolio.CashPct,
		TotalRiskPct:     rs.Portfolio.TotalRiskPct,
		CreatedAt:        time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("persist portfolio: %w", err)
	}

	log.Info().Int("positions", len(rs.Portfolio.Positions)).Msg("portfolio constructed")
	return nil
}

// runExecution only runs the Monday gap decision when the run actually
// lands on a Monday; any other day it's a no-op, matching §4.11's
// "Monday 09:15-09:20 IST" execution window.
func (d Dependencies) runExecution(ctx context.Context, rs *RunState) error {
	if time.Now().UTC().Weekday() != time.Monday {
		return nil
	}
	rs.GapDecisions = make(map[string]execution.GapResult, len(rs.Portfolio.Positions))

	for _, pos := range rs.Portfolio.Positions {
		setupResult, ok := rs.Setups[pos.Symbol]
		if !ok {
			continue
		}
		bars, err := d.Repo.Bars.ListBySymbol(ctx, pos.Symbol, historyRange())
		if err != nil || len(bars) == 0 {
			continue
		}
		open := bars[len(bars)-1].Open

		rs.GapDecisions[pos.Symbol] = execution.DecideGap(execution.GapInputs{
			Symbol:     pos.Symbol,
			Stop:       setupResult.Stop,
			EntryLow:   setupResult.EntryLow,
			EntryHigh:  setupResult.EntryHigh,
			MondayOpen: open,
		})
	}

	log.Info().Int("decisions", len(rs.GapDecisions)).Msg("monday gap decisions made")
	return nil
}

func (d Dependencies) runRecommendation(ctx context.Context, rs *RunState) error {
	cards := make([]recommendation.Card, 0, len(rs.Portfolio.Positions))

	for _, pos := range rs.Portfolio.Positions {
		sym := pos.Symbol
		setupResult, hasSetup := rs.Setups[sym]
		sized, hasSize := rs.Sizing[sym]
		mScore := rs.MomentumScores[sym]
		cScore := rs.ConsistencyScores[sym]
		lScore := rs.LiquidityScores[sym]
		if !hasSetup || !hasSize {
			continue
		}

		var name, sector string
		for _, st := range rs.UniverseResult.Stocks {
			if st.Symbol == sym {
				name, sector = st.Name, st.Sector
				break
			}
		}

		card := recommendation.Card{
			Symbol:           sym,
			Name:             name,
			Sector:           sector,
			Week:             rs.Week,
			MomentumScore:    mScore.Value,
			ConsistencyScore: cScore.FinalScore,
			LiquidityScore:   lScore.Score,
			SetupConfidence:  setupResult.Confidence,
			EntryLow:         setupResult.EntryLow,
			EntryHigh:        setupResult.EntryHigh,
			Stop:             setupResult.Stop,
			StopMethod:       setupResult.StopMethod,
			Target1:          setupResult.Target1,
			Target2:          setupResult.Target2,
			RR:               setupResult.RR,
			Shares:           sized.FinalShares,
			Investment:       pos.PositionValue,
			RiskAmount:       sized.FinalRisk,
			PositionPct:      sized.PositionPct,
		}

		card = recommendation.Assemble(card, rs.Config.Weights.Conviction)
		cards = append(cards, card)
	}

	rs.Recommendation = recommendation.Recommendation{
		Week:         rs.Week,
		MarketRegime: string(rs.Regime.State),
		TotalSetups:  len(rs.Setups),
		Cards:        cards,
		Status:       recommendation.StatusDraft,
		CreatedAt:    time.Now().UTC(),
	}

	cardMap := make(map[string]interface{}, len(cards))
	for _, c := range cards {
		cardMap[c.Symbol] = c
	}

	if err := d.Repo.Recommendations.Upsert(ctx, persistence.RecommendationRecord{
		Week:         rs.Week,
		MarketRegime: string(rs.Regime.State),
		TotalSetups:  len(rs.Setups),
		Cards:        cardMap,
		Status:       string(recommendation.StatusDraft),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("persist recommendation: %w", err)
	}

	log.Info().Int("cards", len(cards)).Msg("recommendation assembled")
	return nil
}
