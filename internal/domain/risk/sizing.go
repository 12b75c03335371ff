// Package risk implements S5: volatility- and Kelly-adjusted position
// sizing with a regime multiplier and capital cap (§4.9).
package risk

import (
	"math"

	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
)

// SystemStats are the rolling 52-week outcome statistics the Kelly
// fraction reads. With insufficient history, callers should pass the
// configured priors (see config.RiskConfig) instead of zero values.
type SystemStats struct {
	WinRate float64
	AvgWin  float64
	AvgLoss float64
}

// Inputs bundles the per-symbol geometry and market context S5 sizes
// against.
type Inputs struct {
	Symbol       string
	MidEntry     float64
	Stop         float64
	RR           float64
	NiftyATR14   float64
	StockATR14   float64
	RegimeMult   float64
	RegimeRRFloor float64
}

// Result is the S5 PositionSize record (§3).
type Result struct {
	domain.Header
	StopMethod   string
	RiskPerShare float64
	BaseShares   int
	VolAdj       float64
	KellyFrac    float64
	RegimeMult   float64
	FinalShares  int
	FinalRisk    float64
	PositionPct  float64
	Qualifies    bool
}

// Size computes a position's share count from portfolio risk budget,
// volatility adjustment, Kelly fraction, and regime multiplier.
func Size(in Inputs, stats SystemStats, cfg *config.RiskConfig) Result {
	riskPerShare := in.MidEntry - in.Stop
	stopDistancePct := riskPerShare / in.MidEntry

	if riskPerShare <= 0 || stopDistancePct > 0.08 || in.RR < in.RegimeRRFloor {
		return Result{
			Header:       domain.Header{Symbol: in.Symbol},
			RiskPerShare: riskPerShare,
			Qualifies:    false,
		}
	}

	baseRiskBudget := cfg.PortfolioValue * cfg.RiskPctPerTrade
	baseShares := int(math.Floor(baseRiskBudget / riskPerShare))

	volAdj := 1.0
	if in.StockATR14 > 0 {
		volAdj = clampRange(in.NiftyATR14/in.StockATR14, 0.5, 1.5)
	}

	kelly := kellyFraction(stats)

	finalShares := int(math.Floor(float64(baseShares) * volAdj * kelly * in.RegimeMult))

	if float64(finalShares)*in.MidEntry > cfg.MaxPositionPct*cfg.PortfolioValue {
		finalShares = int(math.Floor(cfg.MaxPositionPct * cfg.PortfolioValue / in.MidEntry))
	}

	finalRisk := float64(finalShares) * riskPerShare
	positionPct := float64(finalShares) * in.MidEntry / cfg.PortfolioValue

	qualifies := finalShares >= 1

	return Result{
		Header:       domain.Header{Symbol: in.Symbol},
		RiskPerShare: riskPerShare,
		BaseShares:   baseShares,
		VolAdj:       volAdj,
		KellyFrac:    kelly,
		RegimeMult:   in.RegimeMult,
		FinalShares:  finalShares,
		FinalRisk:    finalRisk,
		PositionPct:  positionPct,
		Qualifies:    qualifies,
	}
}

// kellyFraction computes `(winRate*avgWin - (1-winRate)*avgLoss)/avgWin`
// clipped to [0,1].
func kellyFraction(s SystemStats) float64 {
	if s.AvgWin <= 0 {
		return 0
	}
	f := (s.WinRate*s.AvgWin - (1-s.WinRate)*s.AvgLoss) / s.AvgWin
	return clampRange(f, 0, 1)
}

// StatsOrPrior returns the rolling system stats if there is enough trade
// history behind them, else the configured prior (§4.9: "with insufficient
// history, use (0.50, 1.2, 1.1) as a prior").
func StatsOrPrior(rolling SystemStats, tradeCount int, cfg *config.RiskConfig) SystemStats {
	const minTrades = 20
	if tradeCount >= minTrades {
		return rolling
	}
	return SystemStats{
		WinRate: cfg.KellyPriorWin,
		AvgWin:  cfg.KellyPriorAvgWin,
		AvgLoss: cfg.KellyPriorAvgLoss,
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
