package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// fakeUpstream serves concepts and labels from maps and counts calls.
// URIs listed in failing return an upstream error.
type fakeUpstream struct {
	source   domain.Source
	mu       sync.Mutex
	concepts map[string]*domain.Concept
	labels   map[string]domain.Labels
	failing  map[string]bool

	lookups     atomic.Int32
	labelCalls  atomic.Int32
	searches    atomic.Int32
	gate        chan struct{}
	lookupStart chan struct{}
}

var _ driven.Upstream = (*fakeUpstream)(nil)

func newFakeUpstream(source domain.Source) *fakeUpstream {
	return &fakeUpstream{
		source:   source,
		concepts: make(map[string]*domain.Concept),
		labels:   make(map[string]domain.Labels),
		failing:  make(map[string]bool),
	}
}

func (f *fakeUpstream) addConcept(uri, label string, broader ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &domain.Concept{URI: uri, PrefLabel: label, Lang: "en", Source: f.source, Broader: []domain.BroaderRef{}}
	for _, b := range broader {
		c.Broader = append(c.Broader, domain.BroaderRef{URI: b})
	}
	f.concepts[uri] = c
	if label != "" {
		f.labels[uri] = domain.Labels{"en": label}
	}
}

func (f *fakeUpstream) fail(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[uri] = true
}

func (f *fakeUpstream) heal(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failing, uri)
}

func (f *fakeUpstream) Source() domain.Source { return f.source }

func (f *fakeUpstream) Lookup(ctx context.Context, uri string) (*domain.Concept, error) {
	f.lookups.Add(1)
	if f.lookupStart != nil {
		f.lookupStart <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[uri] {
		return nil, &domain.UpstreamError{Source: f.source, Op: "lookup", URI: uri, StatusCode: 503}
	}
	c, ok := f.concepts[uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (f *fakeUpstream) Labels(_ context.Context, uri string) (domain.Labels, error) {
	f.labelCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[uri] {
		return nil, &domain.UpstreamError{Source: f.source, Op: "labels", URI: uri, StatusCode: 503}
	}
	if _, ok := f.concepts[uri]; !ok {
		if l, ok := f.labels[uri]; ok {
			return l.Filter(nil), nil
		}
		return nil, domain.ErrNotFound
	}
	return f.labels[uri].Filter(nil), nil
}

func (f *fakeUpstream) BroaderOf(ctx context.Context, uri string) ([]domain.BroaderRef, error) {
	c, err := f.Lookup(ctx, uri)
	if err != nil {
		return nil, err
	}
	return c.Broader, nil
}

// Search matches preferred labels case-insensitively. Labels listed in
// failing return an upstream error.
func (f *fakeUpstream) Search(ctx context.Context, label, lang string) (*domain.Concept, error) {
	f.searches.Add(1)
	f.mu.Lock()
	if f.failing[label] {
		f.mu.Unlock()
		return nil, &domain.UpstreamError{Source: f.source, Op: "search", URI: label, StatusCode: 503}
	}
	var hit *domain.Concept
	for _, c := range f.concepts {
		if strings.EqualFold(c.PrefLabel, label) {
			hit = c.Clone()
			break
		}
	}
	f.mu.Unlock()
	if hit == nil {
		return nil, domain.ErrNotFound
	}

	broader, err := f.BroaderOf(ctx, hit.URI)
	if err != nil {
		return nil, err
	}
	hit.Lang = lang
	hit.Broader = broader
	return hit, nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingCache fails every write.
type failingCache struct {
	driven.CacheStore
}

func (failingCache) Put(context.Context, domain.CachedEntry) error {
	return context.DeadlineExceeded
}
