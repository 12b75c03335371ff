package recommendation

import (
	"testing"
	"time"

	"github.com/nseweekly/engine/internal/config"
)

func TestAssemble_WithFundamentalsAvailable(t *testing.T) {
	c := Card{
		Symbol: "X", EntryLow: 94, EntryHigh: 96, Stop: 93, Target1: 97, Target2: 99,
		MomentumScore: 90, ConsistencyScore: 80, LiquidityScore: 85,
		FundamentalScore: 70, FundamentalAvailable: true, SetupConfidence: 75,
	}
	out := Assemble(c, config.DefaultConvictionWeights)
	if out.Conviction10 <= 0 || out.Conviction10 > 10 {
		t.Fatalf("conviction10 = %.2f, out of [0,10]", out.Conviction10)
	}
	if out.ConvictionLabel == "" {
		t.Errorf("expected a non-empty conviction label")
	}
	if len(out.ActionSteps) == 0 {
		t.Errorf("expected action steps to be populated")
	}
}

func TestAssemble_RenormalizesWithoutFundamentals(t *testing.T) {
	withFund := Card{
		MomentumScore: 90, ConsistencyScore: 80, LiquidityScore: 85,
		FundamentalScore: 0, FundamentalAvailable: false, SetupConfidence: 75,
		EntryLow: 94, EntryHigh: 96, Stop: 93,
	}
	out := Assemble(withFund, config.DefaultConvictionWeights)

	// Without renormalization, a missing fundamental would drag conviction
	// down purely for missing data. Renormalized, it should track roughly
	// the weighted average of the four present components.
	approxWithoutRenorm := (0.25*9 + 0.20*8 + 0.15*8.5 + 0.20*7.5)
	if out.Conviction10 <= approxWithoutRenorm {
		t.Errorf("renormalized conviction10 %.2f should exceed the zero-scored-fundamental value %.2f", out.Conviction10, approxWithoutRenorm)
	}
}

func TestConvictionLabel_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{8.0, "Very High"},
		{6.5, "High"},
		{5.0, "Medium"},
		{3.5, "Low"},
		{3.49, "Very Low"},
	}
	for _, c := range cases {
		if got := convictionLabel(c.score); got != c.want {
			t.Errorf("convictionLabel(%.2f) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestLifecycle_DraftApprovedExecuted(t *testing.T) {
	now := time.Date(2026, 7, 27, 9, 0, 0, 0, time.UTC)
	r := Recommendation{Week: "2026-W31", Status: StatusDraft, CreatedAt: now}

	r, ok := Approve(r, now.Add(time.Hour))
	if !ok || r.Status != StatusApproved {
		t.Fatalf("expected approval to succeed, got status=%s ok=%v", r.Status, ok)
	}

	r, ok = Execute(r, now.Add(2*time.Hour))
	if !ok || r.Status != StatusExecuted {
		t.Fatalf("expected execution to succeed, got status=%s ok=%v", r.Status, ok)
	}

	// Executed recommendations never expire.
	r = ExpireIfStale(r, now.Add(30*24*time.Hour))
	if r.Status != StatusExecuted {
		t.Errorf("expected executed status to be sticky, got %s", r.Status)
	}
}

func TestLifecycle_ExpiresAfterSevenDays(t *testing.T) {
	now := time.Date(2026, 7, 27, 9, 0, 0, 0, time.UTC)
	r := Recommendation{Week: "2026-W31", Status: StatusDraft, CreatedAt: now}
	r = ExpireIfStale(r, now.Add(8*24*time.Hour))
	if r.Status != StatusExpired {
		t.Errorf("expected draft recommendation to expire after 7 days, got %s", r.Status)
	}
}

func TestLifecycle_ApproveFromNonDraftFails(t *testing.T) {
	r := Recommendation{Status: StatusApproved}
	_, ok := Approve(r, time.Now())
	if ok {
		t.Errorf("expected approving a non-draft recommendation to fail")
	}
}
