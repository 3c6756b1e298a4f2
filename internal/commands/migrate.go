package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/storage"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.bootstrap()
			if err != nil {
				return err
			}

			version, err := storage.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return fmt.Errorf("migrating %s: %w", cfg.SQLiteDBPath, err)
			}
			logger.Info("Migrations applied", "path", cfg.SQLiteDBPath, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
