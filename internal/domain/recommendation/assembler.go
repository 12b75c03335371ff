// Package recommendation implements S8: joining per-symbol stage outputs
// into a final trade card with conviction scoring (§4.12), and the
// draft/approved/executed/expired status lifecycle (§3 Lifecycle).
package recommendation

import (
	"fmt"
	"time"

	"github.com/nseweekly/engine/internal/config"
)

// Card is the per-symbol section of a Recommendation (§6 canonical
// output shape).
type Card struct {
	Symbol string
	Name   string
	Sector string
	Week   string

	MomentumScore    float64
	ConsistencyScore float64
	LiquidityScore   float64
	FundamentalScore float64
	FundamentalAvailable bool
	SetupConfidence  float64
	Conviction10     float64
	ConvictionLabel  string

	Current float64
	High52  float64
	SMA20   float64
	SMA50   float64
	SMA200  float64
	ATR14   float64

	EntryLow   float64
	EntryHigh  float64
	Stop       float64
	StopMethod string
	Target1    float64
	Target2    float64
	RR         float64

	Shares      int
	Investment  float64
	RiskAmount  float64
	PositionPct float64

	ActionSteps    []string
	GapContingency string
	Invalidation   []string
}

// Assemble computes conviction10 and its label, renormalizing across the
// remaining four components when the fundamental refresh is absent for
// this symbol (see DESIGN.md decision #1), and attaches the action-step
// and invalidation narrative.
func Assemble(c Card, weights config.ConvictionWeights) Card {
	momentum := c.MomentumScore / 10
	consistency := c.ConsistencyScore / 10
	liquidity := c.LiquidityScore / 10
	fundamental := c.FundamentalScore / 10
	setupConfidence := c.SetupConfidence / 10

	var conviction10 float64
	if c.FundamentalAvailable {
		conviction10 = weights.Momentum*momentum + weights.Consistency*consistency +
			weights.Liquidity*liquidity + weights.Fundamental*fundamental +
			weights.SetupConfidence*setupConfidence
	} else {
		remaining := weights.Momentum + weights.Consistency + weights.Liquidity + weights.SetupConfidence
		conviction10 = (weights.Momentum*momentum + weights.Consistency*consistency +
			weights.Liquidity*liquidity + weights.SetupConfidence*setupConfidence) / remaining
	}

	c.Conviction10 = conviction10
	c.ConvictionLabel = convictionLabel(conviction10)
	c.ActionSteps = buildActionSteps(c)
	c.Invalidation = buildInvalidation(c)

	return c
}

func convictionLabel(conviction10 float64) string {
	switch {
	case conviction10 >= 8:
		return "Very High"
	case conviction10 >= 6.5:
		return "High"
	case conviction10 >= 5:
		return "Medium"
	case conviction10 >= 3.5:
		return "Low"
	default:
		return "Very Low"
	}
}

func buildActionSteps(c Card) []string {
	risk := c.EntryHigh - c.Stop
	if risk <= 0 {
		risk = c.EntryHigh - c.EntryLow
	}
	return []string{
		fmt.Sprintf("Place limit order in zone %.2f-%.2f", c.EntryLow, c.EntryHigh),
		fmt.Sprintf("Hard stop at %.2f (%s)", c.Stop, c.StopMethod),
		fmt.Sprintf("Trail stop to breakeven at +1R (%.2f)", c.EntryHigh+risk),
		fmt.Sprintf("Trail stop to +1R at +2R (%.2f)", c.EntryHigh+2*risk),
		fmt.Sprintf("Take partial profit at target1 %.2f, remainder at target2 %.2f", c.Target1, c.Target2),
	}
}

func buildInvalidation(c Card) []string {
	return []string{
		fmt.Sprintf("Close below stop %.2f on daily close basis", c.Stop),
		"Setup pattern structure breaks before entry is filled",
		"Regime transitions to RISK_OFF before entry is filled",
	}
}

// Status is a Recommendation's lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusExecuted Status = "executed"
	StatusExpired  Status = "expired"
)

// Recommendation is the S8 Recommendation record (§3).
type Recommendation struct {
	Week           string
	MarketRegime   string
	TotalSetups    int
	Cards          []Card
	Status         Status
	CreatedAt      time.Time
	ApprovedAt     *time.Time
	ExecutedAt     *time.Time
}

// Approve transitions a draft recommendation to approved. No-op (returns
// false) if the recommendation isn't in draft status.
func Approve(r Recommendation, now time.Time) (Recommendation, bool) {
	if r.Status != StatusDraft {
		return r, false
	}
	r.Status = StatusApproved
	r.ApprovedAt = &now
	return r, true
}

// Execute transitions an approved recommendation to executed.
func Execute(r Recommendation, now time.Time) (Recommendation, bool) {
	if r.Status != StatusApproved {
		return r, false
	}
	r.Status = StatusExecuted
	r.ExecutedAt = &now
	return r, true
}

// ExpireIfStale transitions a draft or approved recommendation to expired
// once 7 days have elapsed since creation, per §3's auto-expiry rule.
func ExpireIfStale(r Recommendation, now time.Time) Recommendation {
	if r.Status == StatusExecuted || r.Status == StatusExpired {
		return r
	}
	if now.Sub(r.CreatedAt) >= 7*24*time.Hour {
		r.Status = StatusExpired
	}
	return r
}
