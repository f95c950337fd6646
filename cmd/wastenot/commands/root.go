package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/config"
	"github.com/vbonduro/wastenot/internal/logging"
)

type app struct {
	server     string
	remote     bool
	jsonOutput bool

	loadConfig func() (*config.Config, error)
	// openBackend is replaceable so commands can be exercised without a
	// database or server.
	openBackend func(cmd *cobra.Command) (Backend, func(), error)

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

func NewRootCommand(version string) *cobra.Command {
	a := &app{loadConfig: config.Load}
	a.openBackend = a.defaultBackend
	return newRootCommand(a, version)
}

func newRootCommand(a *app, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wastenot",
		Short: "Share surplus food with your community",
		Long: `wastenot lists surplus food donations, lets people claim them, and keeps
a running tally of the donor's impact.

Commands run against the local database by default. Pass --server URL, or
--remote to use API_BASE_URL, to talk to a running wastenot server instead.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.server, "server", "", "use the HTTP API at this URL instead of the local database")
	rootCmd.PersistentFlags().BoolVar(&a.remote, "remote", false, "use the HTTP API at API_BASE_URL instead of the local database")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newDonateCommand(a))
	rootCmd.AddCommand(newDonationsCommand(a))
	rootCmd.AddCommand(newProfileCommand(a))

	return rootCmd
}

// config loads configuration and logging once per invocation.
func (a *app) config() (*config.Config, *slog.Logger, func(), error) {
	if a.cfg != nil {
		return a.cfg, a.logger, func() {}, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	a.cfg, a.logger = cfg, logger
	return cfg, logger, cleanup, nil
}
