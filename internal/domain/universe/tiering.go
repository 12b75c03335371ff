// Package universe implements S1: building the tradable universe and
// assigning each stock a quality score and tier (§4.3).
package universe

import (
	"github.com/nseweekly/engine/internal/config"
	"github.com/nseweekly/engine/internal/domain"
)

// Instrument is the raw per-symbol membership data S1 reads from the
// instruments/MTF/index-constituent provider feeds (§6).
type Instrument struct {
	Symbol     string
	Name       string
	ISIN       string
	Sector     string
	LotSize    int
	IsMTF      bool
	InNifty50  bool
	InNifty100 bool
	InNifty200 bool
	InNifty500 bool
}

// Classify computes quality_score and tier for one instrument per the §4.3
// formula. A stock in neither MTF nor any Nifty index is Tier D and
// excluded from the active universe.
func Classify(inst Instrument, cfg *config.UniverseConfig) domain.Stock {
	inAnyIndex := inst.InNifty50 || inst.InNifty100 || inst.InNifty200 || inst.InNifty500

	base := 0.0
	if inst.IsMTF {
		base = cfg.MTFBase
	}

	bonus := 0.0
	switch {
	case inst.InNifty50:
		bonus = cfg.IndexBonus["nifty50"]
	case inst.InNifty100:
		bonus = cfg.IndexBonus["nifty100"]
	case inst.InNifty200:
		bonus = cfg.IndexBonus["nifty200"]
	case inst.InNifty500:
		bonus = cfg.IndexBonus["nifty500"]
	}

	qualityScore := base + bonus

	var tier domain.Tier
	switch {
	case !inst.IsMTF && !inAnyIndex:
		tier = domain.TierD
	case qualityScore >= cfg.TierCutoffs.A:
		tier = domain.TierA
	case qualityScore >= cfg.TierCutoffs.B:
		tier = domain.TierB
	case qualityScore >= cfg.TierCutoffs.C:
		tier = domain.TierC
	default:
		tier = domain.TierD
	}

	return domain.Stock{
		Symbol:       inst.Symbol,
		Name:         inst.Name,
		ISIN:         inst.ISIN,
		Sector:       inst.Sector,
		LotSize:      inst.LotSize,
		IsMTF:        inst.IsMTF,
		InNifty50:    inst.InNifty50,
		InNifty100:   inst.InNifty100,
		InNifty200:   inst.InNifty200,
		InNifty500:   inst.InNifty500,
		QualityScore: qualityScore,
		Tier:         tier,
		Active:       inst.IsMTF || inAnyIndex,
	}
}

// BuildResult is the S1 activity's output: the classified universe plus
// summary counts for the run's stage ledger.
type BuildResult struct {
	Stocks          []domain.Stock
	TotalInstruments int
	ActiveCount     int
	TierCounts      map[domain.Tier]int
	DeactivatedSymbols []string // previously-active symbols absent from this run
}

// Build classifies every instrument in this run's feed and, given the set
// of symbols that were active as of the prior run, computes which symbols
// should now be marked inactive because they no longer appear (§4.3:
// "mark previously-active symbols absent from this run as active=false").
func Build(instruments []Instrument, previouslyActive map[string]bool, cfg *config.UniverseConfig) BuildResult {
	seen := make(map[string]bool, len(instruments))
	stocks := make([]domain.Stock, 0, len(instruments))
	tierCounts := make(map[domain.Tier]int)

	for _, inst := range instruments {
		stock := Classify(inst, cfg)
		stocks = append(stocks, stock)
		seen[inst.Symbol] = true
		tierCounts[stock.Tier]++
	}

	var deactivated []string
	for symbol, wasActive := range previouslyActive {
		if wasActive && !seen[symbol] {
			deactivated = append(deactivated, symbol)
		}
	}

	active := 0
	for _, s := range stocks {
		if s.Active {
			active++
		}
	}

	return BuildResult{
		Stocks:             stocks,
		TotalInstruments:   len(instruments),
		ActiveCount:        active,
		TierCounts:         tierCounts,
		DeactivatedSymbols: deactivated,
	}
}
