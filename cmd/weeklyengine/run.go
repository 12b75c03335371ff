package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nseweekly/engine/internal/orchestration"
)

func newRunCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full weekly pipeline",
		Long:  "Executes universe, regime, scoring, setup, guards, sizing, portfolio, execution, and recommendation stages for one week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if week == "" {
				week = currentWeek(time.Now().UTC())
			}

			deps, err := buildRuntimeDeps()
			if err != nil {
				return err
			}
			defer deps.close()

			rs := orchestration.NewRunState(week, deps.config)
			stages := orchestration.BuildPipeline(deps.pipeDeps)
			runner := orchestration.NewRunner(deps.ledger, stages...)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			result := runner.Run(ctx, rs)

			for _, s := range result.Stages {
				status := "ok"
				if s.Err != nil {
					status = "FAILED: " + s.Err.Error()
				} else if s.Skipped {
					status = "skipped"
				}
				fmt.Printf("%-20s %-10v %s\n", s.Name, s.Duration, status)
			}

			if !result.Success {
				return result.Err()
			}

			log.Info().
				Str("week", week).
				Dur("total", result.TotalDuration).
				Msg("weekly run completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Week to run (YYYY-MM-DD, Monday); defaults to the current week")
	return cmd
}
