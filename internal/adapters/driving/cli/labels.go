package cli

import (
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var labelsLanguages string

var labelsCmd = &cobra.Command{
	Use:   "labels [uri...]",
	Short: "Resolve labels for one or more concepts",
	Long: `Resolves multilingual labels for each URI. URIs are resolved
independently, so one failing URI does not affect the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().StringVarP(&labelsLanguages, "languages", "l", "", "comma-separated language codes (default: all)")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	if resolverService == nil {
		return errors.New("resolver service not configured")
	}

	outcomes := resolverService.ResolveLabelsBatch(cmd.Context(), args, splitLanguages(labelsLanguages))

	if jsonOutput {
		return outputJSON(cmd, outcomes)
	}

	p := newPrinter(cmd)
	failed := 0
	for _, o := range outcomes {
		p.Title("%s", o.URI)
		switch o.Status {
		case domain.OutcomeFound:
			langs := make([]string, 0, len(o.Labels))
			for lang := range o.Labels {
				langs = append(langs, lang)
			}
			sort.Strings(langs)
			if len(langs) == 0 {
				p.Warn("  no labels in the requested languages")
			}
			for _, lang := range langs {
				p.Field(lang, o.Labels[lang])
			}
		case domain.OutcomeNotFound:
			p.Warn("  not found")
		default:
			failed++
			p.Warn("  error: %s", o.Error)
		}
	}

	if failed == len(outcomes) {
		return errors.New("all lookups failed")
	}
	return nil
}

func splitLanguages(s string) []string {
	var out []string
	for _, lang := range strings.Split(s, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}
