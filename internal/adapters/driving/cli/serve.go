package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tingbok/tingbok/internal/adapters/driving/rest"
	"github.com/tingbok/tingbok/internal/logger"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving concept, label and hierarchy lookups,
the package vocabulary, and Prometheus metrics on /metrics.

The configuration file is watched while the server runs; root mapping and
log level changes apply without a restart.

Examples:
  tingbok serve
  tingbok serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config, :5100)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the config file on change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := newHTTPServer()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && instance != nil {
		addr = instance.CurrentSettings().Server.Addr
	}
	if addr == "" {
		addr = ":5100"
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx, addr)
	})
	if instance != nil && !serveNoWatch {
		g.Go(func() error {
			if err := instance.WatchConfig(ctx); err != nil {
				logger.Warn("config reload disabled: %v", err)
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "tingbok %s listening on %s\n", version, addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newHTTPServer() (*rest.Server, error) {
	var metricsHandler http.Handler
	if instance != nil {
		metricsHandler = instance.MetricsHandler()
	}
	return rest.NewServer(&rest.Ports{
		Resolver:   resolverService,
		Hierarchy:  hierarchyService,
		Stats:      statsService,
		Vocabulary: vocabularyService,
	}, rest.Options{
		Version: version,
		Metrics: metricsHandler,
	})
}
