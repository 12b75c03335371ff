package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nseweekly/engine/internal/domain/regime"
	"github.com/nseweekly/engine/internal/orchestration"
)

func newRegimeCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "regime",
		Short: "Run universe construction and regime classification only",
		Long:  "Runs just the S1 universe and C5 regime stages and prints the resulting regime call, without scoring or sizing any symbol",
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
			stages := orchestration.BuildPipeline(deps.pipeDeps)[:2]
			runner := orchestration.NewRunner(deps.ledger, stages...)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			result := runner.Run(ctx, rs)
			if !result.Success {
				return result.Err()
			}

			fmt.Println(regime.FormatReport(rs.Regime))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Week to classify (YYYY-MM-DD, Monday); defaults to the current week")
	return cmd
}
