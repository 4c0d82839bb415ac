// Package cli provides the tingbok command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/adapters/driven/config/file"
	"github.com/tingbok/tingbok/internal/app"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
	"github.com/tingbok/tingbok/internal/logger"
)

// skipBootstrap marks commands that run without building the services.
const skipBootstrap = "skip-bootstrap"

var (
	version = "dev"

	configPath string
	verbose    bool
	jsonOutput bool

	instance          *app.App
	resolverService   driving.ResolverService
	hierarchyService  driving.HierarchyService
	statsService      driving.CacheStatsService
	vocabularyService driving.VocabularyService
)

var rootCmd = &cobra.Command{
	Use:   "tingbok",
	Short: "SKOS concept lookup service",
	Long: `tingbok resolves concepts from AGROVOC, DBpedia and Wikidata through a
shared on-disk cache, and builds category paths by walking broader relations
up to a root category.

Run "tingbok serve" to start the HTTP API, or query concepts directly:

  tingbok concept http://aims.fao.org/aos/agrovoc/c_6219
  tingbok hierarchy http://www.wikidata.org/entity/Q10998`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/tingbok/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

// bootstrap builds the services unless the command opts out or they were
// already provided.
func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipBootstrap] == "true" || resolverService != nil {
		return nil
	}

	config, err := file.NewConfigStore(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(config, app.Options{})
	if err != nil {
		return err
	}

	instance = a
	resolverService, hierarchyService, statsService, vocabularyService = a.Ports()
	logger.Debug("configuration loaded from %s", config.Path())
	return nil
}

func shutdown() error {
	if instance == nil {
		return nil
	}
	err := instance.Close()
	instance = nil
	resolverService, hierarchyService, statsService, vocabularyService = nil, nil, nil, nil
	return err
}
