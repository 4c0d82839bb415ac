package rest

import (
	"context"
	"strings"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// mockResolver is a mock implementation of driving.ResolverService.
type mockResolver struct {
	concepts map[string]*domain.Concept
	labels   map[string]domain.Labels
	err      error
	batch    []domain.LabelsOutcome

	lastKey       domain.ConceptKey
	lastLanguages []string
	lastLabel     string
	lastLang      string
}

func (m *mockResolver) Resolve(_ context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.Resolution, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	res := &domain.Resolution{Key: key, Kind: kind, Origin: domain.OriginCache}
	switch kind {
	case domain.KindConcept:
		if c, ok := m.concepts[key.URI]; ok {
			res.Found = true
			res.Concept = c.Clone()
		}
	case domain.KindLabels:
		if l, ok := m.labels[key.URI]; ok {
			res.Found = true
			res.Labels = l.Filter(nil)
		}
	}
	return res, nil
}

func (m *mockResolver) ResolveURI(ctx context.Context, uri string, kind domain.Kind) (*domain.Resolution, error) {
	key, err := domain.KeyForURI(uri)
	if err != nil {
		return nil, err
	}
	return m.Resolve(ctx, key, kind)
}

func (m *mockResolver) ResolveLabels(ctx context.Context, uri string, languages []string) (*domain.Resolution, error) {
	res, err := m.ResolveURI(ctx, uri, domain.KindLabels)
	if err != nil {
		return nil, err
	}
	res.Labels = res.Labels.Filter(languages)
	return res, nil
}

func (m *mockResolver) ResolveLabel(_ context.Context, source domain.Source, label, lang string) (*domain.Resolution, error) {
	m.lastLabel, m.lastLang = label, lang
	if m.err != nil {
		return nil, m.err
	}
	res := &domain.Resolution{
		Key:    domain.ConceptKey{Source: source, Lang: lang, Label: strings.ToLower(label)},
		Kind:   domain.KindConcept,
		Origin: domain.OriginUpstream,
	}
	for _, c := range m.concepts {
		if c.Source == source && strings.EqualFold(c.PrefLabel, label) {
			res.Found = true
			res.Concept = c.Clone()
			break
		}
	}
	return res, nil
}

func (m *mockResolver) ResolveLabelsBatch(_ context.Context, _ []string, languages []string) []domain.LabelsOutcome {
	m.lastLanguages = languages
	return m.batch
}

// mockHierarchy is a mock implementation of driving.HierarchyService.
type mockHierarchy struct {
	path         *domain.HierarchyPath
	err          error
	lastMaxDepth int
	lastSource   domain.Source
	lastLabel    string
	lastLang     string
}

func (m *mockHierarchy) ResolveHierarchy(_ context.Context, _ string, maxDepth int) (*domain.HierarchyPath, error) {
	m.lastMaxDepth = maxDepth
	return m.path, m.err
}

func (m *mockHierarchy) ResolveHierarchyLabel(_ context.Context, source domain.Source, label, lang string, maxDepth int) (*domain.HierarchyPath, error) {
	m.lastSource, m.lastLabel, m.lastLang, m.lastMaxDepth = source, label, lang, maxDepth
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
}

func (m *mockVocabulary) List(_ context.Context) (map[string]domain.VocabularyConcept, error) {
	return m.concepts, nil
}

func (m *mockVocabulary) Get(_ context.Context, id string) (*domain.VocabularyConcept, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	c, ok := m.concepts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}
