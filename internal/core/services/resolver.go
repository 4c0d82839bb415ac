package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
	"github.com/tingbok/tingbok/internal/logger"
	"github.com/tingbok/tingbok/internal/metrics"
)

// Ensure Resolver implements the interface.
var _ driving.ResolverService = (*Resolver)(nil)

// ResolverOptions configures a Resolver. Zero values take defaults.
type ResolverOptions struct {
	TTL              time.Duration
	NegativeTTL      time.Duration
	BatchConcurrency int

	// Language is preferred when labelling broader references.
	// SourceLanguages overrides it per source.
	Language        string
	SourceLanguages map[domain.Source]string

	Metrics *metrics.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Resolver is the cache-first concept resolver.
//
// At most one upstream call per (key, kind) is in flight at a time.
// Concurrent callers join the running call; a caller that gives up only
// detaches itself, the shared call keeps running for the others.
type Resolver struct {
	cache     driven.CacheStore
	upstreams map[domain.Source]driven.Upstream
	opts      ResolverOptions
	flights   singleflight.Group
}

// NewResolver creates a resolver over cache and the given upstream adapters.
func NewResolver(cache driven.CacheStore, upstreams map[domain.Source]driven.Upstream, opts ResolverOptions) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = domain.DefaultCacheTTL
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = domain.DefaultNegativeCacheTTL
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = domain.DefaultBatchConcurrency
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		cache:     cache,
		upstreams: upstreams,
		opts:      opts,
	}
}

// Resolve serves (key, kind) from cache or the owning upstream.
func (r *Resolver) Resolve(ctx context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.Resolution, error) {
	if key.ID() == "" {
		return nil, fmt.Errorf("%w: empty uri", domain.ErrInvalidInput)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, kind)
	}
	if key.IsLabel() && kind != domain.KindConcept {
		return nil, fmt.Errorf("%w: label keys resolve concepts only", domain.ErrInvalidInput)
	}

	if res, ok := r.fromCache(ctx, key, kind, true); ok {
		return res, nil
	}

	upstream, ok := r.upstreams[key.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, key)
	}

	leader := false
	ch := r.flights.DoChan(flightKey(key, kind), func() (any, error) {
		leader = true
		// The shared call must outlive the caller that started it.
		return r.fetch(context.WithoutCancel(ctx), upstream, key, kind)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if !leader {
			r.opts.Metrics.RecordDeduped(string(kind))
		}
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*domain.Resolution).Clone(), nil
	}
}

// ResolveURI derives the source from the URI namespace and resolves it.
func (r *Resolver) ResolveURI(ctx context.Context, uri string, kind domain.Kind) (*domain.Resolution, error) {
	key, err := domain.KeyForURI(uri)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, key, kind)
}

// ResolveLabel finds a concept by label in source.
func (r *Resolver) ResolveLabel(ctx context.Context, source domain.Source, label, lang string) (*domain.Resolution, error) {
	key, err := domain.KeyForLabel(source, label, lang)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, key, domain.KindConcept)
}

// ResolveLabels resolves labels for uri, filtered to languages.
func (r *Resolver) ResolveLabels(ctx context.Context, uri string, languages []string) (*domain.Resolution, error) {
	res, err := r.ResolveURI(ctx, uri, domain.KindLabels)
	if err != nil {
		return nil, err
	}
	if res.Found {
		res.Labels = res.Labels.Filter(languages)
	}
	return res, nil
}

// ResolveLabelsBatch resolves every URI independently with bounded concurrency.
func (r *Resolver) ResolveLabelsBatch(ctx context.Context, uris []string, languages []string) []domain.LabelsOutcome {
	out := make([]domain.LabelsOutcome, len(uris))

	var g errgroup.Group
	g.SetLimit(r.opts.BatchConcurrency)
	for i, uri := range uris {
		g.Go(func() error {
			out[i] = r.labelsOutcome(ctx, uri, languages)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r *Resolver) labelsOutcome(ctx context.Context, uri string, languages []string) domain.LabelsOutcome {
	outcome := domain.LabelsOutcome{URI: uri}
	res, err := r.ResolveLabels(ctx, uri, languages)
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource), errors.Is(err, domain.ErrInvalidInput):
		outcome.Status = domain.OutcomeUnsupported
		outcome.Error = err.Error()
	case err != nil:
		outcome.Status = domain.OutcomeError
		outcome.Error = err.Error()
	case !res.Found:
		outcome.Status = domain.OutcomeNotFound
		outcome.Origin = res.Origin
	default:
		outcome.Status = domain.OutcomeFound
		outcome.Labels = res.Labels
		outcome.Origin = res.Origin
	}
	return outcome
}

// fromCache returns a fresh cached resolution. record controls whether the
// lookup is counted in metrics.
func (r *Resolver) fromCache(ctx context.Context, key domain.ConceptKey, kind domain.Kind, record bool) (*domain.Resolution, bool) {
	entry, ok, err := r.cache.Get(ctx, key, kind)
	if err != nil {
		logger.Warn("cache read failed for %s (%s): %v", key, kind, err)
		ok = false
	}

	result := metrics.CacheMiss
	defer func() {
		if record {
			r.opts.Metrics.RecordCacheLookup(string(kind), result)
		}
	}()

	if !ok {
		return nil, false
	}
	if !entry.IsFresh(r.opts.Now()) {
		result = metrics.CacheStale
		return nil, false
	}

	res := &domain.Resolution{Key: key, Kind: kind, Origin: domain.OriginCache}
	if entry.IsNegative() {
		result = metrics.CacheNegativeHit
		return res, true
	}

	res.Found = true
	switch kind {
	case domain.KindConcept:
		c, err := entry.Concept()
		if err != nil {
			logger.Debug("ignoring undecodable cache entry for %s: %v", key, err)
			return nil, false
		}
		if !key.IsLabel() {
			c.URI = key.URI
		} else if c.URI == "" {
			logger.Debug("ignoring label cache entry without uri for %s", key)
			return nil, false
		}
		c.Source = key.Source
		res.Concept = c
	case domain.KindLabels:
		labels, err := entry.Labels()
		if err != nil {
			logger.Debug("ignoring undecodable cache entry for %s: %v", key, err)
			return nil, false
		}
		res.Labels = labels
	}
	result = metrics.CacheHit
	return res, true
}

// fetch runs once per in-flight (key, kind).
func (r *Resolver) fetch(ctx context.Context, upstream driven.Upstream, key domain.ConceptKey, kind domain.Kind) (*domain.Resolution, error) {
	// Another flight may have filled the cache since the caller looked.
	if res, ok := r.fromCache(ctx, key, kind, false); ok {
		return res, nil
	}

	done := r.opts.Metrics.StartUpstreamCall(string(key.Source), string(kind))
	logger.Debug("upstream %s %s for %s", key.Source, kind, key.ID())

	res := &domain.Resolution{Key: key, Kind: kind, Origin: domain.OriginUpstream}
	var payload any
	var err error
	switch kind {
	case domain.KindConcept:
		var c *domain.Concept
		if key.IsLabel() {
			c, err = upstream.Search(ctx, key.Label, key.Lang)
		} else {
			c, err = upstream.Lookup(ctx, key.URI)
		}
		if err == nil && (c == nil || (key.IsLabel() && c.URI == "")) {
			err = fmt.Errorf("%w: upstream returned no concept", domain.ErrNotFound)
		}
		if err == nil {
			if !key.IsLabel() {
				c.URI = key.URI
			}
			c.Source = key.Source
			r.completeBroader(ctx, c)
			res.Concept = c
			payload = c
		}
	case domain.KindLabels:
		var labels domain.Labels
		labels, err = upstream.Labels(ctx, key.URI)
		if err == nil {
			if labels == nil {
				labels = domain.Labels{}
			}
			res.Labels = labels
			payload = domain.LabelsRecord{URI: key.URI, Source: key.Source, Labels: labels}
		}
	}

	switch {
	case err == nil:
		done(metrics.OutcomeFound)
		res.Found = true
		r.store(ctx, key, kind, kind, payload, r.opts.TTL)
		return res, nil
	case errors.Is(err, domain.ErrNotFound):
		done(metrics.OutcomeNotFound)
		r.store(ctx, key, kind, domain.KindNotFound, nil, r.opts.NegativeTTL)
		return res, nil
	case errors.Is(err, domain.ErrUnsupportedSource):
		done(metrics.OutcomeError)
		return nil, err
	default:
		done(metrics.OutcomeError)
		if !domain.IsUpstream(err) {
			err = &domain.UpstreamError{Source: key.Source, Op: string(kind), URI: key.ID(), Err: err}
		}
		logger.Warn("upstream %s %s failed for %s: %v", key.Source, kind, key.ID(), err)
		return nil, err
	}
}

// completeBroader labels broader refs the upstream left unlabelled, from the
// labels resolution of each ref, falling back to the URI's local name.
func (r *Resolver) completeBroader(ctx context.Context, c *domain.Concept) {
	for _, i := range c.UnlabelledBroader() {
		ref := &c.Broader[i]
		if res, err := r.ResolveURI(ctx, ref.URI, domain.KindLabels); err == nil && res.Found {
			ref.Label, _ = res.Labels.Preferred(r.language(c.Source))
		}
		if ref.Label == "" {
			ref.Label = domain.LocalName(ref.URI)
		}
	}
}

func (r *Resolver) language(source domain.Source) string {
	if lang := r.opts.SourceLanguages[source]; lang != "" {
		return lang
	}
	return r.opts.Language
}

// store writes an entry. Write failures are logged and counted, never returned.
func (r *Resolver) store(ctx context.Context, key domain.ConceptKey, requested, kind domain.Kind, payload any, ttl time.Duration) {
	entry := domain.CachedEntry{
		Key:       key,
		Requested: requested,
		Kind:      kind,
		FetchedAt: r.opts.Now(),
		TTL:       ttl,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Warn("encoding cache entry for %s: %v", key, err)
			r.opts.Metrics.RecordCacheWriteError()
			return
		}
		entry.Payload = data
	}
	if err := r.cache.Put(ctx, entry); err != nil {
		logger.Warn("cache write failed for %s (%s): %v", key, requested, err)
		r.opts.Metrics.RecordCacheWriteError()
	}
}

func flightKey(key domain.ConceptKey, kind domain.Kind) string {
	if key.IsLabel() {
		return string(kind) + "|" + string(key.Source) + "|label|" + key.ID()
	}
	return string(kind) + "|" + string(key.Source) + "|" + key.URI
}
