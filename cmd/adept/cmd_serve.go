package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"adept/internal/logging"
	adeptserver "adept/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			backend := a.selector.Backend(ctx)
			logging.Boot("serving MCP over stdio (backend %s)", backend.Name())
			return server.ServeStdio(adeptserver.New(a.orch, a.store))
		},
	}
}
