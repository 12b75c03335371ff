package execution

import "testing"

func baseGapInputs() GapInputs {
	return GapInputs{Symbol: "X", Stop: 93, EntryLow: 94, EntryHigh: 96}
}

func TestDecideGap_GappedThroughStop(t *testing.T) {
	in := baseGapInputs()
	in.MondayOpen = 92
	r := DecideGap(in)
	if r.Decision != SkipGappedThroughStop {
		t.Errorf("decision = %s, want SKIP_GAPPED_THROUGH_STOP", r.Decision)
	}
}

func TestDecideGap_DoNotChase(t *testing.T) {
	in := baseGapInputs()
	in.MondayOpen = 98 // > 96*1.02 = 97.92
	r := DecideGap(in)
	if r.Decision != SkipDoNotChase {
		t.Errorf("decision = %s, want SKIP_DO_NOT_CHASE", r.Decision)
	}
}

func TestDecideGap_EnterAtOpen(t *testing.T) {
	in := baseGapInputs()
	in.MondayOpen = 95
	r := DecideGap(in)
	if r.Decision != EnterAtOpen {
		t.Errorf("decision = %s, want ENTER_AT_OPEN", r.Decision)
	}
}

func TestDecideGap_SmallGapAgainst(t *testing.T) {
	in := baseGapInputs()
	in.MondayOpen = 93.5
	r := DecideGap(in)
	if r.Decision != EnterAtOpenSmallGapAgainst {
		t.Errorf("decision = %s, want ENTER_AT_OPEN_SMALL_GAP_AGAINST", r.Decision)
	}
}

func TestDecideGap_WaitAndWatch(t *testing.T) {
	in := baseGapInputs()
	in.MondayOpen = 97 // between entryHigh (96) and entryHigh*1.02 (97.92)
	r := DecideGap(in)
	if r.Decision != WaitAndWatch {
		t.Errorf("decision = %s, want WAIT_AND_WATCH", r.Decision)
	}
}

func TestHealth_ActionTiers(t *testing.T) {
	cases := []struct {
		in     HealthInputs
		wantAt RecommendedAction
	}{
		{HealthInputs{WinRate12w: 0.8, Expectancy12wN: 0.8, DrawdownPctN: 0.1, ExecutionScore: 90}, ActionContinue},
		{HealthInputs{WinRate12w: 0.5, Expectancy12wN: 0.5, DrawdownPctN: 0.3, ExecutionScore: 60}, ActionReduce},
		{HealthInputs{WinRate12w: 0.3, Expectancy12wN: 0.2, DrawdownPctN: 0.5, ExecutionScore: 40}, ActionPause},
		{HealthInputs{WinRate12w: 0.1, Expectancy12wN: 0.0, DrawdownPctN: 0.9, ExecutionScore: 10}, ActionStop},
	}
	for _, c := range cases {
		r := Health(c.in)
		if r.RecommendedAction != c.wantAt {
			t.Errorf("health=%.1f action=%s, want %s", r.Health, r.RecommendedAction, c.wantAt)
		}
	}
}
