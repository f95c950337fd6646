package commands

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/metrics"
	"github.com/vbonduro/wastenot/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := a.config()
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cfg.ListenAddr
			}

			m := metrics.New(cfg.MetricsEnabled)
			svc, closeStorage, err := buildService(cmd.Context(), cfg, logger, m)
			if err != nil {
				return err
			}
			defer closeStorage()

			return web.NewServer(svc, m, logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to LISTEN_ADDR)")
	return cmd
}
