package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/buildinfo"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

const cacheSweepInterval = time.Minute

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, b, err := opts.openBackend(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err)
		}
	}()

	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()

	b.Caches.Start(ctx, cacheSweepInterval)
	defer b.Caches.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DefaultPageLimit:   cfg.DefaultPageLimit,
		Version:            buildinfo.Version,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Services{
		Categories: b.Categories,
		Ledger:     b.Ledger,
		Goals:      b.Goals,
		Dashboard:  b.Dashboard,
		DB:         b.Repo,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			log.FieldOperation, log.OpStartup,
			"addr", cfg.Addr(),
			"version", buildinfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
