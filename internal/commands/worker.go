package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func newWorkerCommand(opts *rootOptions) *cobra.Command {
	var backfillOnly bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Mirror ledger transactions into a spreadsheet",
		Long: "Backfills every stored transaction into the configured spreadsheet, " +
			"then follows ledger events from AMQP until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, opts, backfillOnly)
		},
	}
	cmd.Flags().BoolVar(&backfillOnly, "backfill-only", false, "mirror existing transactions and exit")

	return cmd
}

func runWorker(cmd *cobra.Command, opts *rootOptions, backfillOnly bool) error {
	cfg, logger, b, err := opts.openBackend(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err)
		}
	}()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	mirror, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateMirror(cmd.Context(), bcfg)
	if err != nil {
		return err
	}

	w := worker.NewMirrorWorker(b.Repo, mirror, logger.WithComponent(log.ComponentWorker))

	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()

	if backfillOnly || b.Events == nil {
		if !backfillOnly {
			logger.Warn("AMQP is not configured; mirroring existing transactions only")
		}
		res, err := w.Backfill(ctx)
		if err != nil {
			return err
		}
		logger.Info("Backfill finished", "total", res.Total, "synced", res.Synced, "errors", res.Errors)
		if res.Errors > 0 {
			return errors.New("backfill finished with errors")
		}
		return nil
	}

	logger.Info("Starting mirror worker", "mirror", bcfg.Mirror.String(), "queue", cfg.AMQPQueue)
	if err := w.Run(ctx, b.Events); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		return err
	}
	logger.Info("Worker stopped gracefully")
	return nil
}
