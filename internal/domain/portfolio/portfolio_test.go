package portfolio

import (
	"math/rand"
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func uncorrelatedSeries(seed int64, n int) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()*0.04 - 0.02
	}
	return out
}

func TestBuild_ExcludesHighlyCorrelatedPair(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Portfolio
	base := uncorrelatedSeries(1, 60)
	correlated := make([]float64, 60)
	copy(correlated, base)
	for i := range correlated {
		correlated[i] += 0.0001 // near-identical series, correlation ~1.0
	}

	candidates := []Candidate{
		{Symbol: "A", Sector: "IT", QualityComposite: 90, PositionValue: 50000, DailyReturns60d: base},
		{Symbol: "B", Sector: "IT", QualityComposite: 80, PositionValue: 50000, DailyReturns60d: correlated},
	}

	result := Build("2026-W31", candidates, 1000000, band, 1.0)

	if len(result.Positions) != 1 {
		t.Fatalf("expected 1 position retained (A), got %d: %+v", len(result.Positions), result.Positions)
	}
	if result.Positions[0].Symbol != "A" {
		t.Errorf("expected A (higher composite) to be retained, got %s", result.Positions[0].Symbol)
	}
	if result.CorrelationFiltered != 1 {
		t.Errorf("correlationFiltered = %d, want 1", result.CorrelationFiltered)
	}
}

func TestBuild_SectorCapRejectsFourth(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOn).Portfolio
	var candidates []Candidate
	for i := 0; i < 4; i++ {
		candidates = append(candidates, Candidate{
			Symbol: string(rune('A' + i)), Sector: "BANK",
			QualityComposite: 90 - float64(i),
			PositionValue:     10000,
			DailyReturns60d:   uncorrelatedSeries(int64(i+10), 60),
		})
	}

	result := Build("2026-W31", candidates, 1000000, band, 1.0)

	if len(result.Positions) != 3 {
		t.Fatalf("expected 3 positions retained under the per-sector cap, got %d", len(result.Positions))
	}
	if result.SectorFiltered != 1 {
		t.Errorf("sectorFiltered = %d, want 1", result.SectorFiltered)
	}
}

func TestBuild_RiskOffYieldsEmptyPortfolio(t *testing.T) {
	band := config.DefaultThresholds().ForRegime(config.RegimeRiskOff).Portfolio
	candidates := []Candidate{
		{Symbol: "A", Sector: "IT", QualityComposite: 90, PositionValue: 50000, DailyReturns60d: uncorrelatedSeries(1, 60)},
	}
	result := Build("2026-W31", candidates, 1000000, band, 0.0)
	if len(result.Positions) != 0 {
		t.Errorf("expected empty portfolio under RISK_OFF (multiplier 0), got %d positions", len(result.Positions))
	}
}

func TestPearson_IdenticalSeriesIsOne(t *testing.T) {
	a := uncorrelatedSeries(7, 60)
	c := pearson(a, a)
	if c < 0.999 {
		t.Errorf("pearson(a,a) = %.4f, want ~1.0", c)
	}
}
