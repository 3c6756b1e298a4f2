// Package commands implements the fintrack command line.
package commands

import (
	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/buildinfo"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

type rootOptions struct {
	envFiles []string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "fintrack",
		Short:   "Personal finance ledger with savings goals",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newWorkerCommand(opts),
		newMigrateCommand(opts),
		newReportCommand(opts),
	)

	return rootCmd
}

func (o *rootOptions) bootstrap() (*config.Config, *log.Logger, error) {
	return cli.Bootstrap(o.envFiles...)
}

// openBackend loads configuration and wires the services.
func (o *rootOptions) openBackend(cmd *cobra.Command) (*config.Config, *log.Logger, *backend.Backend, error) {
	cfg, logger, err := o.bootstrap()
	if err != nil {
		return nil, nil, nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, b, nil
}
