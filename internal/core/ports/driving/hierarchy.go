package driving

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// HierarchyService walks broader relations up to a root category.
type HierarchyService interface {
	// ResolveHierarchy returns a label-resolved path. It fails only when the
	// starting concept is unsupported or its upstream failed; mid-path
	// failures yield a partial path with a reason. maxDepth <= 0 uses the
	// configured default.
	ResolveHierarchy(ctx context.Context, uri string, maxDepth int) (*domain.HierarchyPath, error)

	// ResolveHierarchyLabel finds the starting concept by label, then walks
	// from its URI like ResolveHierarchy.
	ResolveHierarchyLabel(ctx context.Context, source domain.Source, label, lang string, maxDepth int) (*domain.HierarchyPath, error)
}
