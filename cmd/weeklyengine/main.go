package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "weeklyengine"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "NSE weekly trade-selection engine",
		Version: version,
		Long: `weeklyengine runs the weekly NSE trade-selection pipeline: universe
tiering, regime detection, momentum/consistency/liquidity scoring, setup
detection, guards, position sizing, portfolio construction, and the final
recommendation card set.`,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRegimeCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// currentWeek returns the Monday of the current ISO week in the
// "2006-01-02" form every pipeline record is keyed on.
func currentWeek(now time.Time) string {
	wd := int(now.Weekday())
	if wd == 0 {
		wd = 7
	}
	return now.AddDate(0, 0, -(wd - 1)).Format("2006-01-02")
}
