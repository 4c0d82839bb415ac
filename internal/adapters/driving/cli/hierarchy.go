package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var (
	hierarchyMaxDepth int
	hierarchyByLabel  bool
	hierarchyLang     string
	hierarchySource   string
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [uri]",
	Short: "Build the category path of a concept",
	Long: `Walks broader relations from a concept up to a root category and prints
the resulting path, root first.

With --label the argument is a label; the walk starts from its best match
in --source.

The walk stops at a mapped root category, at a concept with no broader
relation, on a cycle, or after --max-depth hops.`,
	Args: cobra.ExactArgs(1),
	RunE: runHierarchy,
}

// hierarchyOutput is the --json shape.
type hierarchyOutput struct {
	*domain.HierarchyPath
	Path   string            `json:"path"`
	URIMap map[string]string `json:"uri_map"`
}

func init() {
	hierarchyCmd.Flags().IntVarP(&hierarchyMaxDepth, "max-depth", "d", 0, "maximum hops (0 = configured default)")
	hierarchyCmd.Flags().BoolVar(&hierarchyByLabel, "label", false, "treat the argument as a label")
	hierarchyCmd.Flags().StringVarP(&hierarchyLang, "lang", "l", "en", "language of the label")
	hierarchyCmd.Flags().StringVarP(&hierarchySource, "source", "s", string(domain.SourceAgrovoc), "source searched for the label")
	rootCmd.AddCommand(hierarchyCmd)
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	if hierarchyService == nil {
		return errors.New("hierarchy service not configured")
	}
	if hierarchyMaxDepth < 0 {
		return fmt.Errorf("%w: max-depth must not be negative", domain.ErrInvalidInput)
	}

	var (
		path *domain.HierarchyPath
		err  error
	)
	if hierarchyByLabel {
		source := domain.Source(strings.ToLower(hierarchySource))
		if !source.IsValid() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, hierarchySource)
		}
		path, err = hierarchyService.ResolveHierarchyLabel(cmd.Context(), source, args[0], hierarchyLang, hierarchyMaxDepth)
	} else {
		path, err = hierarchyService.ResolveHierarchy(cmd.Context(), strings.TrimSpace(args[0]), hierarchyMaxDepth)
	}
	if err != nil {
		return fmt.Errorf("hierarchy failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd, hierarchyOutput{
			HierarchyPath: path,
			Path:          path.Breadcrumb(),
			URIMap:        path.URIMap(),
		})
	}

	p := newPrinter(cmd)
	if !path.Found {
		if hierarchyByLabel {
			p.Warn("No %s concept found for %q", hierarchySource, args[0])
		} else {
			p.Warn("Concept not found: %s", path.URI)
		}
		return nil
	}

	p.Title("%s", path.Breadcrumb())
	for i := len(path.Steps) - 1; i >= 0; i-- {
		step := path.Steps[i]
		label := step.Label
		if step.OriginalLabel != "" {
			label = fmt.Sprintf("%s (mapped from %q)", step.Label, step.OriginalLabel)
		}
		p.Item(label, step.URI)
	}
	p.Field("reason", string(path.Reason))
	p.Field("root", path.Root)
	if path.Error != "" {
		p.Warn("  partial path: %s", path.Error)
	}
	return nil
}
