// Package portfolio implements S6: greedy conviction-ordered position
// selection under a pairwise correlation filter, sector caps, and a cash
// reserve (§4.10).
package portfolio

import (
	"math"
	"sort"

	"github.com/nseweekly/engine/internal/config"
)

// Candidate is a sized, setup-qualified position competing for inclusion.
type Candidate struct {
	Symbol           string
	Sector           string
	QualityComposite float64
	PositionValue    float64
	DailyReturns60d  []float64 // trailing 60 daily returns, most recent last
}

// Position is a selected allocation within the constructed portfolio.
type Position struct {
	Symbol        string
	Sector        string
	PositionValue float64
}

// Result is the S6 PortfolioAllocation record (§3).
type Result struct {
	Week                string
	Positions           []Position
	SectorAllocation    map[string]float64
	AllocatedPct        float64
	CashPct             float64
	TotalRiskPct        float64
	CorrelationFiltered int
	SectorFiltered      int
	Status              string
}

const maxPositions = 12
const maxSectorPct = 0.25
const maxPerSector = 3
const correlationCeiling = 0.70

// Build runs the greedy conviction-ordered selection over candidates,
// already sorted by the caller's policy (ties aside, descending by
// QualityComposite is re-asserted here for safety).
func Build(week string, candidates []Candidate, portfolioValue float64, band config.PortfolioThresholds, regimeMultiplier float64) Result {
	result := Result{
		Week:             week,
		SectorAllocation: map[string]float64{},
		Status:           "draft",
	}

	if regimeMultiplier == 0 {
		return result
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QualityComposite > sorted[j].QualityComposite
	})

	corr := correlationMatrix(sorted)

	sectorCount := map[string]int{}
	sectorValue := map[string]float64{}
	cumulativeValue := 0.0
	budget := (1 - band.CashReservePct) * portfolioValue

	var selected []Candidate

	for _, c := range sorted {
		if len(selected) == maxPositions {
			break
		}

		correlated := false
		for _, s := range selected {
			if math.Abs(corr[pairKey(c.Symbol, s.Symbol)]) > correlationCeiling {
				correlated = true
				break
			}
		}
		if correlated {
			result.CorrelationFiltered++
			continue
		}

		if sectorCount[c.Sector] >= maxPerSector {
			result.SectorFiltered++
			continue
		}
		if sectorValue[c.Sector]+c.PositionValue > maxSectorPct*portfolioValue {
			result.SectorFiltered++
			continue
		}
		if cumulativeValue+c.PositionValue > budget {
			continue
		}

		selected = append(selected, c)
		sectorCount[c.Sector]++
		sectorValue[c.Sector] += c.PositionValue
		cumulativeValue += c.PositionValue
		result.SectorAllocation[c.Sector] += c.PositionValue
	}

	for _, c := range selected {
		result.Positions = append(result.Positions, Position{
			Symbol:        c.Symbol,
			Sector:        c.Sector,
			PositionValue: c.PositionValue,
		})
	}

	result.AllocatedPct = cumulativeValue / portfolioValue
	result.CashPct = 1 - result.AllocatedPct

	return result
}

// correlationMatrix computes pairwise Pearson correlation of trailing
// daily returns for every candidate pair, keyed symmetrically.
func correlationMatrix(candidates []Candidate) map[string]float64 {
	m := make(map[string]float64, len(candidates)*len(candidates))
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			c := pearson(candidates[i].DailyReturns60d, candidates[j].DailyReturns60d)
			key := pairKey(candidates[i].Symbol, candidates[j].Symbol)
			m[key] = c
		}
	}
	return m
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// pearson computes the Pearson correlation coefficient between two equal-
// length series, returning 0 if either series has zero variance or the
// lengths mismatch.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
