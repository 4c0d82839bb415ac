package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
	"github.com/tingbok/tingbok/internal/logger"
	"github.com/tingbok/tingbok/internal/metrics"
)

// Ensure HierarchyService implements the interface.
var _ driving.HierarchyService = (*HierarchyService)(nil)

// HierarchyService walks broader relations from a concept up to a root.
type HierarchyService struct {
	resolver driving.ResolverService
	maxDepth int
	mapping  atomic.Pointer[domain.RootMapping]
	metrics  *metrics.Metrics
}

// NewHierarchyService creates a hierarchy service. maxDepth <= 0 uses
// domain.DefaultMaxDepth; a nil mapping disables root mapping.
func NewHierarchyService(
	resolver driving.ResolverService,
	mapping *domain.RootMapping,
	maxDepth int,
	m *metrics.Metrics,
) *HierarchyService {
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxDepth
	}
	s := &HierarchyService{
		resolver: resolver,
		maxDepth: maxDepth,
		metrics:  m,
	}
	s.mapping.Store(mapping)
	return s
}

// SetRootMapping swaps the root mapping. Walks already running keep the old one.
func (s *HierarchyService) SetRootMapping(mapping *domain.RootMapping) {
	s.mapping.Store(mapping)
	logger.Info("root mapping updated (%d entries)", mapping.Len())
}

// RootMapping returns the current root mapping.
func (s *HierarchyService) RootMapping() *domain.RootMapping {
	return s.mapping.Load()
}

// ResolveHierarchy returns the path from uri up to its root.
func (s *HierarchyService) ResolveHierarchy(ctx context.Context, uri string, maxDepth int) (*domain.HierarchyPath, error) {
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}
	key, err := domain.KeyForURI(uri)
	if err != nil {
		return nil, err
	}

	logger.Section("hierarchy " + uri)
	start, err := s.resolver.Resolve(ctx, key, domain.KindConcept)
	if err != nil {
		return nil, err
	}
	return s.fromStart(ctx, uri, start, maxDepth), nil
}

// ResolveHierarchyLabel finds the starting concept by label and walks from it.
// The returned path carries the concept's URI, or is empty when nothing matched.
func (s *HierarchyService) ResolveHierarchyLabel(
	ctx context.Context,
	source domain.Source,
	label, lang string,
	maxDepth int,
) (*domain.HierarchyPath, error) {
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}

	logger.Section(fmt.Sprintf("hierarchy %s %q (%s)", source, label, lang))
	start, err := s.resolver.ResolveLabel(ctx, source, label, lang)
	if err != nil {
		return nil, err
	}
	uri := ""
	if start.Found {
		uri = start.Concept.URI
	}
	return s.fromStart(ctx, uri, start, maxDepth), nil
}

func (s *HierarchyService) fromStart(ctx context.Context, uri string, start *domain.Resolution, maxDepth int) *domain.HierarchyPath {
	path := &domain.HierarchyPath{URI: uri, Steps: []domain.HierarchyStep{}}
	if !start.Found {
		path.Reason = domain.StopNotFound
		s.metrics.RecordHierarchyStop(string(path.Reason))
		return path
	}
	path.Found = true

	s.walk(ctx, path, start.Concept, maxDepth)

	if path.Root == "" && len(path.Steps) > 0 {
		path.Root = path.Steps[len(path.Steps)-1].Label
	}
	s.metrics.RecordHierarchyStop(string(path.Reason))
	logger.Debug("hierarchy %s: %s (%s)", uri, path.Breadcrumb(), path.Reason)
	return path
}

// walk appends steps to path until a terminal reason is reached.
func (s *HierarchyService) walk(ctx context.Context, path *domain.HierarchyPath, current *domain.Concept, maxDepth int) {
	mapping := s.mapping.Load()
	visited := map[string]bool{current.URI: true}
	path.Steps = append(path.Steps, s.step(ctx, current))

	for hops := 0; ; {
		last := &path.Steps[len(path.Steps)-1]
		if name, ok := s.lookupRoot(mapping, current, last); ok {
			last.OriginalLabel = last.Label
			last.Label = name
			path.Root = name
			path.Reason = domain.StopMappedRoot
			return
		}

		if len(current.Broader) == 0 {
			path.Reason = domain.StopNaturalTop
			return
		}
		next := current.Broader[0]
		if visited[next.URI] {
			path.Reason = domain.StopCycleDetected
			return
		}
		if hops >= maxDepth {
			path.Reason = domain.StopDepthExceeded
			return
		}

		concept, reason, err := s.resolveNext(ctx, next.URI)
		if err != nil {
			path.Reason = reason
			path.Error = err.Error()
			return
		}

		visited[concept.URI] = true
		path.Steps = append(path.Steps, s.step(ctx, concept))
		current = concept
		hops++
	}
}

// resolveNext resolves a broader URI. On failure it returns the stop reason.
func (s *HierarchyService) resolveNext(ctx context.Context, uri string) (*domain.Concept, domain.StopReason, error) {
	res, err := s.resolver.ResolveURI(ctx, uri, domain.KindConcept)
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource):
		return nil, domain.StopBrokenLink, err
	case err != nil:
		return nil, domain.StopUpstreamError, err
	case !res.Found:
		return nil, domain.StopBrokenLink, fmt.Errorf("%w: %s", domain.ErrNotFound, uri)
	}
	return res.Concept, "", nil
}

// step builds a label-resolved path step. Labels are best effort.
func (s *HierarchyService) step(ctx context.Context, c *domain.Concept) domain.HierarchyStep {
	step := domain.HierarchyStep{
		URI:    c.URI,
		Label:  c.PrefLabel,
		Source: c.Source,
	}
	if res, err := s.resolver.ResolveLabels(ctx, c.URI, nil); err == nil && res.Found {
		step.Labels = res.Labels
	} else if err != nil {
		logger.Debug("labels for %s unavailable: %v", c.URI, err)
	}
	if step.Label == "" {
		step.Label, _ = step.Labels.Preferred()
	}
	if step.Label == "" {
		step.Label = domain.LocalName(c.URI)
	}
	return step
}

// lookupRoot matches the step by URI, then by its label and English label.
func (s *HierarchyService) lookupRoot(mapping *domain.RootMapping, c *domain.Concept, step *domain.HierarchyStep) (string, bool) {
	if name, ok := mapping.Lookup(c.Source, c.URI, step.Label); ok {
		return name, true
	}
	if en := step.Labels["en"]; en != "" && en != step.Label {
		return mapping.Lookup(c.Source, c.URI, en)
	}
	return "", false
}
