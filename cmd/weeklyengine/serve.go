package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nseweekly/engine/internal/domain/regime"
	httpinterfaces "github.com/nseweekly/engine/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only recommendations API, health, and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildRuntimeDeps()
			if err != nil {
				return err
			}
			defer deps.close()

			// serve runs as its own process, separate from `run`, so there is
			// no in-process regime detection to report; /metrics/regime
			// reads back nothing until a shared store is wired in.
			latestRegime := func() *regime.Detection { return nil }

			config := httpinterfaces.DefaultServerConfig()
			repo := deps.db.Repository()
			server, err := httpinterfaces.NewServer(config, httpinterfaces.Deps{
				Repo:         repo,
				RepoHealth:   deps.db.Health(),
				Cache:        deps.cache,
				LatestRegime: latestRegime,
				Version:      version,
				BuildStamp:   time.Now().UTC().Format(time.RFC3339),
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}

	return cmd
}
