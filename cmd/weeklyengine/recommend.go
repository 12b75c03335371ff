package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRecommendCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the recommendation card set already computed for a week",
		Long:  "Reads the persisted recommendation record for a week and prints it as JSON; run `weeklyengine run` first if nothing has landed yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if week == "" {
				week = currentWeek(time.Now().UTC())
			}

			deps, err := buildRuntimeDeps()
			if err != nil {
				return err
			}
			defer deps.close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			record, err := deps.pipeDeps.Repo.Recommendations.GetByWeek(ctx, week)
			if err != nil {
				return fmt.Errorf("fetching recommendation for week %s: %w", week, err)
			}
			if record == nil {
				return fmt.Errorf("no recommendation recorded for week %s", week)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Week to print (YYYY-MM-DD, Monday); defaults to the current week")
	return cmd
}
