package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/foomo/vacuumpartshub/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMCPCommand(opts *options) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio, or on HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(opts.resolver())
			if err != nil {
				return err
			}
			s := mcp.NewServer(opts.logger, opts.httpClient(), svc)

			if httpAddr == "" {
				opts.logger.Info("starting MCP server in stdio mode")
				return server.ServeStdio(s)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			httpServer := mcp.NewMcpHTTPServer(s, opts.cfg.MCPEndpoint)
			go func() {
				<-ctx.Done()
				if err := httpServer.Shutdown(context.Background()); err != nil {
					opts.logger.Warn("failed to shut down MCP server", zap.Error(err))
				}
			}()
			opts.logger.Info("starting MCP server", zap.String("addr", httpAddr), zap.String("endpoint", opts.cfg.MCPEndpoint))
			if err := httpServer.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP server address (e.g., ':8080')")
	return cmd
}
