package cli

import (
	"context"
	"strings"

	"github.com/tingbok/tingbok/internal/core/domain"
)

const (
	potatoURI   = "http://aims.fao.org/aos/agrovoc/c_6219"
	productsURI = "http://aims.fao.org/aos/agrovoc/c_6211"
	hammerURI   = "http://dbpedia.org/resource/Hammer"
)

// mockResolver is a mock implementation of driving.ResolverService.
type mockResolver struct {
	concepts map[string]*domain.Concept
	labels   map[string]domain.Labels
	err      error

	lastKey       domain.ConceptKey
	lastLanguages []string
	lastSource    domain.Source
	lastLabel     string
	lastLang      string
}

func (m *mockResolver) Resolve(_ context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.Resolution, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	res := &domain.Resolution{Key: key, Kind: kind, Origin: domain.OriginUpstream}
	if c, ok := m.concepts[key.URI]; ok && kind == domain.KindConcept {
		res.Found = true
		res.Concept = c.Clone()
	}
	if l, ok := m.labels[key.URI]; ok && kind == domain.KindLabels {
		res.Found = true
		res.Labels = l.Filter(nil)
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
	m.lastSource, m.lastLabel, m.lastLang = source, label, lang
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

func (m *mockResolver) ResolveLabelsBatch(ctx context.Context, uris []string, languages []string) []domain.LabelsOutcome {
	m.lastLanguages = languages
	out := make([]domain.LabelsOutcome, 0, len(uris))
	for _, uri := range uris {
		res, err := m.ResolveLabels(ctx, uri, languages)
		switch {
		case err != nil:
			out = append(out, domain.LabelsOutcome{URI: uri, Status: domain.OutcomeError, Error: err.Error()})
		case !res.Found:
			out = append(out, domain.LabelsOutcome{URI: uri, Status: domain.OutcomeNotFound})
		default:
			out = append(out, domain.LabelsOutcome{URI: uri, Status: domain.OutcomeFound, Labels: res.Labels, Origin: res.Origin})
		}
	}
	return out
}

// mockHierarchy is a mock implementation of driving.HierarchyService.
type mockHierarchy struct {
	path         *domain.HierarchyPath
	err          error
	lastMaxDepth int
	lastURI      string
	lastSource   domain.Source
	lastLabel    string
	lastLang     string
}

func (m *mockHierarchy) ResolveHierarchy(_ context.Context, uri string, maxDepth int) (*domain.HierarchyPath, error) {
	m.lastURI, m.lastMaxDepth = uri, maxDepth
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
type mockVocabulary struct{}

func (mockVocabulary) List(_ context.Context) (map[string]domain.VocabularyConcept, error) {
	return map[string]domain.VocabularyConcept{}, nil
}

func (mockVocabulary) Get(_ context.Context, _ string) (*domain.VocabularyConcept, error) {
	return nil, domain.ErrNotFound
}

type testServices struct {
	resolver  *mockResolver
	hierarchy *mockHierarchy
	stats     *mockStats
}

// setupTestServices installs mock services and returns a cleanup function
// that restores the package state, including flag variables.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		resolver: &mockResolver{
			concepts: map[string]*domain.Concept{
				potatoURI: {
					URI:       potatoURI,
					PrefLabel: "potatoes",
					Source:    domain.SourceAgrovoc,
					Broader:   []domain.BroaderRef{{URI: productsURI, Label: "products"}},
					AltLabels: map[string][]string{"en": {"potato"}},
				},
			},
			labels: map[string]domain.Labels{
				potatoURI: {"en": "potatoes", "nb": "poteter", "de": "Kartoffeln"},
				hammerURI: {"en": "Hammer"},
			},
		},
		hierarchy: &mockHierarchy{
			path: &domain.HierarchyPath{
				URI:   potatoURI,
				Found: true,
				Steps: []domain.HierarchyStep{
					{URI: potatoURI, Label: "potatoes", Source: domain.SourceAgrovoc},
					{URI: productsURI, Label: "food", OriginalLabel: "products", Source: domain.SourceAgrovoc},
				},
				Reason: domain.StopMappedRoot,
				Root:   "food",
			},
		},
		stats: &mockStats{stats: domain.CacheStats{
			Concepts: 3,
			Labels:   2,
			NotFound: 1,
			Location: "/tmp/skos",
			BySource: map[domain.Source]domain.SourceStat{
				domain.SourceAgrovoc: {Concepts: 3, Labels: 2},
				domain.SourceDBpedia: {NotFound: 1},
			},
		}},
	}

	resolverService = ts.resolver
	hierarchyService = ts.hierarchy
	statsService = ts.stats
	vocabularyService = mockVocabulary{}

	return ts, func() {
		resolverService = nil
		hierarchyService = nil
		statsService = nil
		vocabularyService = nil
		jsonOutput = false
		verbose = false
		conceptSource = ""
		labelsLanguages = ""
		hierarchyMaxDepth = 0
		hierarchyByLabel = false
		hierarchyLang = "en"
		hierarchySource = string(domain.SourceAgrovoc)
		lookupLang = "en"
		lookupSource = string(domain.SourceAgrovoc)
		mcpPort = 0
		rootCmd.SetArgs(nil)
	}
}
