package orchestration

import "sort"

// percentileRanks returns, for each input score, its position in the
// cohort sorted ascending, scaled to [0,1]: 0 for the lowest score, 1 for
// the highest, and 1 for a cohort of one. Tied scores get distinct ranks
// in sort order. This is S3's cross-sectional percentileRank input, which
// only exists once every symbol's raw consistency score for the week is
// known.
func percentileRanks(scores map[string]float64) map[string]float64 {
	symbols := make([]string, 0, len(scores))
	for s := range scores {
		symbols = append(symbols, s)
	}
	sort.Slice(symbols, func(i, j int) bool { return scores[symbols[i]] < scores[symbols[j]] })

	n := len(symbols)
	ranks := make(map[string]float64, n)
	for i, s := range symbols {
		if n <= 1 {
			ranks[s] = 1
			continue
		}
		ranks[s] = float64(i) / float64(n-1)
	}
	return ranks
}
