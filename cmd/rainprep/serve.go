package main

import (
	"context"
	"errors"
	"net/http"

	httpadapter "github.com/couchcryptid/rainfall-features/internal/adapter/http"
	"github.com/couchcryptid/rainfall-features/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var skipInitial bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health and metrics endpoints and re-run preparation on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, closeFn, err := a.buildPipeline(a.newMetrics())
			if err != nil {
				return err
			}
			defer closeFn()

			scheduler, err := pipeline.NewScheduler(a.cfg.PrepareSchedule, p, a.logger)
			if err != nil {
				return err
			}
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, p, a.logger)

			ctx := cmd.Context()
			serveErr := make(chan error, 1)

			// Start HTTP server.
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			// A failed first run leaves /readyz unready until a scheduled run succeeds.
			if !skipInitial {
				if _, err := p.Run(ctx); err != nil {
					a.logger.Warn("initial preparation failed", "error", err)
				}
			}

			schedCtx, cancelSched := context.WithCancel(ctx)
			schedDone := make(chan struct{})
			go func() {
				scheduler.Start(schedCtx)
				close(schedDone)
			}()

			var runErr error
			select {
			case <-ctx.Done():
			case runErr = <-serveErr:
				a.logger.Error("http server error", "error", runErr)
			}
			a.logger.Info("shutting down")

			cancelSched()
			<-schedDone

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}

			a.logger.Info("shutdown complete")
			return runErr
		},
	}

	cmd.Flags().BoolVar(&skipInitial, "skip-initial-run", false, "wait for the first scheduled run instead of preparing at startup")
	return cmd
}
