// Package execution implements S7: the Monday gap decision state machine
// and the Friday position-health summary (§4.11).
package execution

import "fmt"

// GapDecision enumerates the five Monday-open outcomes for an approved
// position.
type GapDecision string

const (
	SkipGappedThroughStop    GapDecision = "SKIP_GAPPED_THROUGH_STOP"
	SkipDoNotChase           GapDecision = "SKIP_DO_NOT_CHASE"
	EnterAtOpen              GapDecision = "ENTER_AT_OPEN"
	EnterAtOpenSmallGapAgainst GapDecision = "ENTER_AT_OPEN_SMALL_GAP_AGAINST"
	WaitAndWatch             GapDecision = "WAIT_AND_WATCH"
)

// GapInputs bundles one position's approved levels and the Monday open.
type GapInputs struct {
	Symbol   string
	Stop     float64
	EntryLow float64
	EntryHigh float64
	MondayOpen float64
}

// GapResult is the decision and a human-readable reason for the audit
// trail.
type GapResult struct {
	Symbol   string
	Decision GapDecision
	Reason   string
}

// DecideGap runs the Monday gap decision tree for one position.
func DecideGap(in GapInputs) GapResult {
	open := in.MondayOpen

	switch {
	case open <= in.Stop:
		return GapResult{
			Symbol:   in.Symbol,
			Decision: SkipGappedThroughStop,
			Reason:   fmt.Sprintf("open %.2f <= stop %.2f", open, in.Stop),
		}
	case open > in.EntryHigh*1.02:
		return GapResult{
			Symbol:   in.Symbol,
			Decision: SkipDoNotChase,
			Reason:   fmt.Sprintf("open %.2f > entryHigh*1.02 %.2f", open, in.EntryHigh*1.02),
		}
	case open >= in.EntryLow && open <= in.EntryHigh:
		return GapResult{
			Symbol:   in.Symbol,
			Decision: EnterAtOpen,
			Reason:   fmt.Sprintf("open %.2f within entry band [%.2f, %.2f]", open, in.EntryLow, in.EntryHigh),
		}
	case open > in.Stop && open < in.EntryLow:
		return GapResult{
			Symbol:   in.Symbol,
			Decision: EnterAtOpenSmallGapAgainst,
			Reason:   fmt.Sprintf("open %.2f between stop %.2f and entryLow %.2f", open, in.Stop, in.EntryLow),
		}
	default:
		return GapResult{
			Symbol:   in.Symbol,
			Decision: WaitAndWatch,
			Reason:   "open outside all decisive bands",
		}
	}
}

// HealthInputs bundles the trailing 12-week performance stats the Friday
// summary's health score reads.
type HealthInputs struct {
	WinRate12w       float64
	Expectancy12wN   float64 // normalized to [0,1]
	DrawdownPctN     float64 // normalized to [0,1]
	ExecutionScore   float64 // 0-100, gap-decision adherence quality
}

// RecommendedAction is the Friday summary's system-health-gated action.
type RecommendedAction string

const (
	ActionContinue RecommendedAction = "CONTINUE"
	ActionReduce   RecommendedAction = "REDUCE"
	ActionPause    RecommendedAction = "PAUSE"
	ActionStop     RecommendedAction = "STOP"
)

// HealthResult is the Friday summary's computed health score and action.
type HealthResult struct {
	Health            float64
	RecommendedAction RecommendedAction
}

// Health computes the weighted system health score and its action tier.
func Health(in HealthInputs) HealthResult {
	health := 0.4*in.WinRate12w*100 +
		0.3*in.Expectancy12wN*100 +
		0.2*(100-in.DrawdownPctN*100) +
		0.1*in.ExecutionScore

	var action RecommendedAction
	switch {
	case health >= 70:
		action = ActionContinue
	case health >= 50:
		action = ActionReduce
	case health >= 30:
		action = ActionPause
	default:
		action = ActionStop
	}

	return HealthResult{Health: health, RecommendedAction: action}
}
