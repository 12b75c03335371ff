package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/nseweekly/engine/internal/config"
)

func TestRunner_Run_ExecutesInOrder(t *testing.T) {
	var order []string
	stages := []Stage{
		{Name: "a", Run: func(ctx context.Context, rs *RunState) error { order = append(order, "a"); return nil }},
		{Name: "b", Run: func(ctx context.Context, rs *RunState) error { order = append(order, "b"); return nil }},
	}

	runner := NewRunner(NewMemoryLedger(), stages...)
	result := runner.Run(context.Background(), NewRunState("2026-01-05", &config.Config{}))

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected stages to run in order a,b, got %v", order)
	}
}

func TestRunner_Run_ShortCircuitsOnError(t *testing.T) {
	var ran []string
	stages := []Stage{
		{Name: "a", Run: func(ctx context.Context, rs *RunState) error { ran = append(ran, "a"); return errors.New("boom") }},
		{Name: "b", Run: func(ctx context.Context, rs *RunState) error { ran = append(ran, "b"); return nil }},
	}

	runner := NewRunner(NewMemoryLedger(), stages...)
	result := runner.Run(context.Background(), NewRunState("2026-01-05", &config.Config{}))

	if result.Success {
		t.Fatalf("expected failure, got success")
	}
	if len(ran) != 1 {
		t.Fatalf("expected stage b to be skipped after a failed, ran=%v", ran)
	}
	if result.Err() == nil {
		t.Fatalf("expected RunResult.Err() to report the failing stage")
	}
}

func TestRunner_Run_SkipsAlreadyDoneStage(t *testing.T) {
	ledger := NewMemoryLedger()
	if err := ledger.MarkDone(context.Background(), "2026-01-05", "a"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	ran := false
	stages := []Stage{
		{Name: "a", Run: func(ctx context.Context, rs *RunState) error { ran = true; return nil }},
	}

	runner := NewRunner(ledger, stages...)
	result := runner.Run(context.Background(), NewRunState("2026-01-05", &config.Config{}))

	if ran {
		t.Fatalf("expected already-completed stage not to re-run")
	}
	if !result.Stages[0].Skipped {
		t.Fatalf("expected stage result to report Skipped=true")
	}
}

func TestMemoryLedger_IsDoneFalseUntilMarked(t *testing.T) {
	ledger := NewMemoryLedger()
	done, err := ledger.IsDone(context.Background(), "2026-01-05", "x")
	if err != nil || done {
		t.Fatalf("expected IsDone to be false before MarkDone, got done=%v err=%v", done, err)
	}

	if err := ledger.MarkDone(context.Background(), "2026-01-05", "x"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	done, err = ledger.IsDone(context.Background(), "2026-01-05", "x")
	if err != nil || !done {
		t.Fatalf("expected IsDone to be true after MarkDone, got done=%v err=%v", done, err)
	}
}
