// Package orchestration sequences the S1-S8 weekly pipeline stages with
// per-stage timing, logging, idempotency, and error short-circuiting.
package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Stage is one named step of the weekly pipeline. Run receives the
// shared RunState and mutates it in place with that stage's output.
type Stage struct {
	Name string
	Run  func(ctx context.Context, rs *RunState) error
}

// StageResult records the outcome of one executed stage.
type StageResult struct {
	Name     string
	Skipped  bool // already completed for this week per the idempotency ledger
	Duration time.Duration
	Err      error
}

// RunResult is the outcome of a full pipeline run.
type RunResult struct {
	Week          string
	Success       bool
	TotalDuration time.Duration
	Stages        []StageResult
}

// Runner executes an ordered list of stages against a RunState, skipping
// any stage the ledger already marked done for this week (§4.1:
// "activities must be idempotent on output" — re-running a completed
// stage is a no-op, not a re-computation).
type Runner struct {
	stages []Stage
	ledger Ledger
}

// NewRunner builds a runner over the given ordered stages.
func NewRunner(ledger Ledger, stages ...Stage) *Runner {
	return &Runner{stages: stages, ledger: ledger}
}

// Run executes every stage in order against rs, stopping at the first
// failing stage.
func (r *Runner) Run(ctx context.Context, rs *RunState) RunResult {
	start := time.Now()
	result := RunResult{Week: rs.Week}

	for _, stage := range r.stages {
		stageStart := time.Now()

		done, err := r.ledger.IsDone(ctx, rs.Week, stage.Name)
		if err != nil {
			log.Warn().Err(err).Str("stage", stage.Name).Msg("idempotency ledger lookup failed, running stage anyway")
		}
		if done {
			result.Stages = append(result.Stages, StageResult{Name: stage.Name, Skipped: true})
			log.Info().Str("week", rs.Week).Str("stage", stage.Name).Msg("stage already completed, skipping")
			continue
		}

		log.Info().Str("week", rs.Week).Str("stage", stage.Name).Msg("stage starting")

		err = stage.Run(ctx, rs)
		duration := time.Since(stageStart)
		result.Stages = append(result.Stages, StageResult{Name: stage.Name, Duration: duration, Err: err})

		if err != nil {
			log.Error().Err(err).Str("week", rs.Week).Str("stage", stage.Name).Dur("duration", duration).Msg("stage failed")
			result.TotalDuration = time.Since(start)
			return result
		}

		if markErr := r.ledger.MarkDone(ctx, rs.Week, stage.Name); markErr != nil {
			log.Warn().Err(markErr).Str("stage", stage.Name).Msg("failed to record stage completion in idempotency ledger")
		}

		log.Info().Str("week", rs.Week).Str("stage", stage.Name).Dur("duration", duration).Msg("stage completed")
	}

	result.Success = true
	result.TotalDuration = time.Since(start)
	return result
}

// Err returns the error of the first failed stage in a RunResult, if any.
func (rr RunResult) Err() error {
	for _, s := range rr.Stages {
		if s.Err != nil {
			return fmt.Errorf("stage %s failed: %w", s.Name, s.Err)
		}
	}
	return nil
}
