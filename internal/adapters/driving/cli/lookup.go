package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var (
	lookupLang   string
	lookupSource string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [label]",
	Short: "Find a concept by label",
	Long: `Searches a source for a label and prints the best match: a concept
whose preferred or alternative label equals the query, else the first hit.

Matches and misses are cached under the source, language and lower-cased
label.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupLang, "lang", "l", "en", "language of the label")
	lookupCmd.Flags().StringVarP(&lookupSource, "source", "s", string(domain.SourceAgrovoc), "source (agrovoc, dbpedia, wikidata)")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if resolverService == nil {
		return errors.New("resolver service not configured")
	}
	source := domain.Source(strings.ToLower(lookupSource))
	if !source.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, lookupSource)
	}

	res, err := resolverService.ResolveLabel(cmd.Context(), source, args[0], lookupLang)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd, res)
	}

	p := newPrinter(cmd)
	if !res.Found || res.Concept == nil {
		p.Warn("No %s concept found for %q", source, args[0])
		return nil
	}
	printConcept(p, res)
	return nil
}
