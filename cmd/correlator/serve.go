package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/queue"
	"github.com/soltixdb/correlator/internal/router"
	"github.com/soltixdb/correlator/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only query API over computed days",
	Long: `Serve the catalog of computed days over HTTP. The server listens for
day completed events on the configured queue and drops cached matrices
of recomputed days.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup("serve")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	cat, err := catalog.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	q, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	dayService := services.NewDayService(logger, cat)
	if err := queue.SubscribeDayCompleted(q, dayService.HandleDayCompleted); err != nil {
		return err
	}

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, dayService, *cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		// Graceful shutdown with 10 second timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("Server exited")
	return err
}
