package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache commands",
	Long:  `Commands for inspecting the concept cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Counts cached concepts, label sets and negative entries, in total and per source.`,
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("cache stats service not configured")
	}

	stats, err := statsService.CacheStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd, stats)
	}

	p := newPrinter(cmd)
	p.Title("Cache")
	p.Field("location", stats.Location)
	p.Field("concepts", fmt.Sprintf("%d", stats.Concepts))
	p.Field("labels", fmt.Sprintf("%d", stats.Labels))
	p.Field("not found", fmt.Sprintf("%d", stats.NotFound))

	for _, source := range domain.AllSources() {
		st := stats.BySource[source]
		p.Item(string(source), fmt.Sprintf("%d concepts, %d labels, %d not found", st.Concepts, st.Labels, st.NotFound))
	}
	return nil
}
