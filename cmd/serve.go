package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foomo/vacuumpartshub/mcp"
	"github.com/foomo/vacuumpartshub/observability"
	"github.com/foomo/vacuumpartshub/server"
	"github.com/foomo/vacuumpartshub/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site from the data directory, with MCP mounted and live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Address to listen on, e.g. :8080")
	_ = opts.v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}

func serve(ctx context.Context, opts *options) error {
	logger := opts.logger
	resolver := opts.resolver()
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}
	svc, err := opts.service(resolver)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	httpClient := opts.httpClient()

	mcpHandler := mcp.NewMcpHTTPSSEServer(logger, mcp.NewServer(logger, httpClient, svc), svc, httpClient, opts.cfg.MCPEndpoint, nil)
	defer mcpHandler.Close()
	srv := server.New(logger, resolver, renderer, metrics, mcpHandler, server.Settings{MCPEndpoint: opts.cfg.MCPEndpoint})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(opts.cfg.Listen)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down site server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := watch.Watch(ctx, logger, opts.cfg.DataDir, func(change watch.Change) {
			resolver.Invalidate()
			metrics.CatalogReloads.Inc()
			mcpHandler.GetSSEServer().NotifyCatalogChanged(change.Name)
		})
		if err != nil {
			logger.Warn("live reload disabled", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
