package main

import (
	"github.com/spf13/cobra"

	"github.com/wudi/scankit/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP processing service",
		Long: `Serves POST /process and /classify (multipart uploads), GET /healthz
and the Prometheus /metrics endpoint. Shuts down gracefully on SIGINT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			srv := server.New(a.cfg, a.log, a.probe)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
