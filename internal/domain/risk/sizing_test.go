package risk

import (
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func TestSize_ExampleScenario(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	in := Inputs{
		Symbol: "X", MidEntry: 95, Stop: 93, RR: 2.0,
		NiftyATR14: 2, StockATR14: 2, RegimeMult: 1.0, RegimeRRFloor: 2.0,
	}
	stats := SystemStats{WinRate: 0.50, AvgWin: 1.2, AvgLoss: 1.1}
	r := Size(in, stats, cfg)
	if !r.Qualifies {
		t.Fatalf("expected qualifies=true, got %+v", r)
	}
	if r.RiskPerShare != 2 {
		t.Errorf("riskPerShare = %.2f, want 2", r.RiskPerShare)
	}
	if r.FinalShares < 1 {
		t.Errorf("finalShares = %d, want >=1", r.FinalShares)
	}
}

func TestSize_DoublingPortfolioValueRoughlyDoublesShares(t *testing.T) {
	cfg1 := config.DefaultRiskConfig()
	cfg2 := config.DefaultRiskConfig()
	cfg2.PortfolioValue *= 2

	in := Inputs{
		Symbol: "X", MidEntry: 95, Stop: 93, RR: 2.0,
		NiftyATR14: 2, StockATR14: 2, RegimeMult: 1.0, RegimeRRFloor: 2.0,
	}
	stats := SystemStats{WinRate: 0.50, AvgWin: 1.2, AvgLoss: 1.1}

	r1 := Size(in, stats, cfg1)
	r2 := Size(in, stats, cfg2)

	ratio := float64(r2.FinalShares) / float64(r1.FinalShares)
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("doubling portfolio value gave shares ratio %.2f, want ~2.0 (floor rounding aside)", ratio)
	}
}

func TestSize_RejectsBelowRRFloor(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	in := Inputs{
		Symbol: "X", MidEntry: 95, Stop: 93, RR: 1.999, RegimeRRFloor: 2.0,
		NiftyATR14: 2, StockATR14: 2, RegimeMult: 1.0,
	}
	stats := SystemStats{WinRate: 0.50, AvgWin: 1.2, AvgLoss: 1.1}
	r := Size(in, stats, cfg)
	if r.Qualifies {
		t.Errorf("rr=1.999 below floor 2.0 should not qualify")
	}
}

func TestSize_CapsByMaxPositionPct(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	cfg.RiskPctPerTrade = 0.5 // force an oversized base position to hit the cap
	in := Inputs{
		Symbol: "X", MidEntry: 100, Stop: 98, RR: 5.0, RegimeRRFloor: 2.0,
		NiftyATR14: 2, StockATR14: 2, RegimeMult: 1.0,
	}
	stats := SystemStats{WinRate: 0.50, AvgWin: 1.2, AvgLoss: 1.1}
	r := Size(in, stats, cfg)
	invested := float64(r.FinalShares) * in.MidEntry
	if invested > cfg.MaxPositionPct*cfg.PortfolioValue+1e-6 {
		t.Errorf("invested %.2f exceeds max position cap %.2f", invested, cfg.MaxPositionPct*cfg.PortfolioValue)
	}
}

func TestStatsOrPrior_UsesConfiguredPriorBelowMinTrades(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	rolling := SystemStats{WinRate: 0.80, AvgWin: 2.0, AvgLoss: 0.5}
	got := StatsOrPrior(rolling, 5, cfg)
	if got.WinRate != cfg.KellyPriorWin {
		t.Errorf("expected prior winRate %.2f with insufficient history, got %.2f", cfg.KellyPriorWin, got.WinRate)
	}
}
