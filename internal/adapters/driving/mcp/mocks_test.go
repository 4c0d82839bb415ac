package mcp

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// mockResolver is a mock implementation of driving.ResolverService.
type mockResolver struct {
	resolution *domain.Resolution
	outcomes   []domain.LabelsOutcome
	err        error

	lastKey    domain.ConceptKey
	lastURIs   []string
	lastSource domain.Source
	lastLabel  string
	lastLang   string
}

func (m *mockResolver) Resolve(_ context.Context, key domain.ConceptKey, _ domain.Kind) (*domain.Resolution, error) {
	m.lastKey = key
	return m.resolution, m.err
}

func (m *mockResolver) ResolveURI(ctx context.Context, uri string, kind domain.Kind) (*domain.Resolution, error) {
	key, err := domain.KeyForURI(uri)
	if err != nil {
		return nil, err
	}
	return m.Resolve(ctx, key, kind)
}

func (m *mockResolver) ResolveLabels(ctx context.Context, uri string, _ []string) (*domain.Resolution, error) {
	return m.ResolveURI(ctx, uri, domain.KindLabels)
}

func (m *mockResolver) ResolveLabel(_ context.Context, source domain.Source, label, lang string) (*domain.Resolution, error) {
	m.lastSource, m.lastLabel, m.lastLang = source, label, lang
	return m.resolution, m.err
}

func (m *mockResolver) ResolveLabelsBatch(_ context.Context, uris []string, _ []string) []domain.LabelsOutcome {
	m.lastURIs = uris
	return m.outcomes
}

// mockHierarchy is a mock implementation of driving.HierarchyService.
type mockHierarchy struct {
	path *domain.HierarchyPath
	err  error

	lastURI    string
	lastSource domain.Source
	lastLabel  string
}

func (m *mockHierarchy) ResolveHierarchy(_ context.Context, uri string, _ int) (*domain.HierarchyPath, error) {
	m.lastURI = uri
	return m.path, m.err
}

func (m *mockHierarchy) ResolveHierarchyLabel(_ context.Context, source domain.Source, label, _ string, _ int) (*domain.HierarchyPath, error) {
	m.lastSource, m.lastLabel = source, label
	return m.path, m.err
}

// mockStats is a mock implementation of driving.CacheStatsService.
type mockStats struct {
	stats domain.CacheStats
	err   error
}

func (m *mockStats) CacheStats(_ context.Context) (domain.CacheStats, error) {
	return m.stats, m.err
}

// mockVocabulary is a mock implementation of driving.VocabularyService.
type mockVocabulary struct {
	concepts map[string]domain.VocabularyConcept
	err      error
}

func (m *mockVocabulary) List(_ context.Context) (map[string]domain.VocabularyConcept, error) {
	return m.concepts, m.err
}

func (m *mockVocabulary) Get(_ context.Context, id string) (*domain.VocabularyConcept, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.concepts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}
