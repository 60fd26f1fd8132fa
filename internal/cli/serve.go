package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/server"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger := loggerFromContext(ctx)

			if cmd.Flags().Changed("addr") {
				g.cfg.Server.Addr = addr
			}

			exec, err := connect(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer exec.Close(cmd.Context())

			svc, c, err := newService(ctx, g.cfg, exec.Reader(), logger)
			if err != nil {
				return err
			}
			defer c.Close()

			srv := server.New(svc, logger, g.cfg.Server.AllowedOrigins)
			return srv.ListenAndServe(ctx, g.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}
