package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var conceptSource string

var conceptCmd = &cobra.Command{
	Use:   "concept [uri]",
	Short: "Look up a concept",
	Long: `Looks up a concept by URI, serving it from the cache when fresh and
fetching it from the owning source otherwise.

The source is derived from the URI namespace unless --source is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConcept,
}

func init() {
	conceptCmd.Flags().StringVarP(&conceptSource, "source", "s", "", "source (agrovoc, dbpedia, wikidata)")
	rootCmd.AddCommand(conceptCmd)
}

func runConcept(cmd *cobra.Command, args []string) error {
	if resolverService == nil {
		return errors.New("resolver service not configured")
	}
	uri := strings.TrimSpace(args[0])

	var (
		res *domain.Resolution
		err error
	)
	if conceptSource != "" {
		source := domain.Source(strings.ToLower(conceptSource))
		if !source.IsValid() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, conceptSource)
		}
		res, err = resolverService.Resolve(cmd.Context(), domain.ConceptKey{Source: source, URI: uri}, domain.KindConcept)
	} else {
		res, err = resolverService.ResolveURI(cmd.Context(), uri, domain.KindConcept)
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd, res)
	}

	p := newPrinter(cmd)
	if !res.Found || res.Concept == nil {
		p.Warn("Concept not found: %s", uri)
		return nil
	}
	printConcept(p, res)
	return nil
}

func printConcept(p *printer, res *domain.Resolution) {
	c := res.Concept
	p.Title("%s", c.PrefLabel)
	p.Field("uri", c.URI)
	p.Field("source", string(c.Source))
	p.Field("origin", string(res.Origin))
	p.Field("description", c.Description)
	p.Field("wikipedia", c.WikipediaURL)

	if len(c.Broader) > 0 {
		p.Field("broader", fmt.Sprintf("%d", len(c.Broader)))
		for _, b := range c.Broader {
			p.Item(b.Label, b.URI)
		}
	}

	if len(c.AltLabels) > 0 {
		langs := make([]string, 0, len(c.AltLabels))
		for lang := range c.AltLabels {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			p.Field("alt ("+lang+")", strings.Join(c.AltLabels[lang], ", "))
		}
	}
}
