package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookgest/internal/api"
	"github.com/dgallion1/bookgest/internal/pipeline"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingestion API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateServer(); err != nil {
				return err
			}
			log := a.log

			svc, err := buildRuntime(a.cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Initialize pipeline.
			orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
				Workers:      a.cfg.WorkerCount,
				MaxQueueSize: a.cfg.MaxQueueSize,
				JobTTL:       a.cfg.JobTTL,
			}, svc.worker(a.cfg, log), svc.metrics)
			orch.Start(ctx)

			// Initialize HTTP server.
			srv := api.NewServer(api.Deps{
				Orchestrator: orch,
				Store:        svc.store,
				Sink:         svc.sink,
				Stats:        svc.stats,
				Metrics:      svc.metrics,
			}, log, api.Config{
				APIKey:         a.cfg.APIKey,
				MaxUploadBytes: a.cfg.MaxUploadBytes,
				CORSOrigins:    a.cfg.CORSOrigins,
			})

			httpServer := &http.Server{
				Addr:         ":" + a.cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				<-ctx.Done()
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting bookgest", "port", a.cfg.Port)
			err = httpServer.ListenAndServe()
			orch.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("port", "", "listen port (PORT)")
	return cmd
}
