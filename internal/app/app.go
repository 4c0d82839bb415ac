// Package app wires configuration, storage, upstream adapters and services
// into a running tingbok instance.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tingbok/tingbok/internal/adapters/driven/storage/filecache"
	"github.com/tingbok/tingbok/internal/adapters/driven/storage/memory"
	"github.com/tingbok/tingbok/internal/adapters/driven/storage/sqlite"
	"github.com/tingbok/tingbok/internal/adapters/driven/vocabulary"
	"github.com/tingbok/tingbok/internal/connectors"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
	"github.com/tingbok/tingbok/internal/core/services"
	"github.com/tingbok/tingbok/internal/logger"
	"github.com/tingbok/tingbok/internal/metrics"
)

// App holds the wired components of one tingbok instance. Settings is
// replaced on every config reload; read it through CurrentSettings once
// WatchConfig runs.
type App struct {
	Settings   domain.Settings
	Config     driven.ConfigStore
	Cache      driven.CacheStore
	Resolver   *services.Resolver
	Hierarchy  *services.HierarchyService
	Stats      *services.CacheStatsService
	Vocabulary *services.VocabularyService
	Metrics    *metrics.Metrics

	registry *prometheus.Registry
	mu       sync.Mutex
}

// Options overrides parts of the wiring, for tests.
type Options struct {
	// Upstreams replaces the adapters built from settings.
	Upstreams map[domain.Source]driven.Upstream
}

// New loads settings from config and builds every component.
func New(config driven.ConfigStore, opts Options) (*App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration from %s: %w", config.Path(), err)
	}
	applyLogSettings(settings.Log)

	cache, err := OpenCache(settings.Cache)
	if err != nil {
		return nil, err
	}

	vocab, err := vocabulary.Load(settings.Vocabulary.Path)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	upstreams := opts.Upstreams
	if upstreams == nil {
		upstreams = connectors.NewUpstreams(settings.Sources)
	}
	for source := range upstreams {
		logger.Debug("upstream %s enabled", source)
	}

	languages := make(map[domain.Source]string, len(settings.Sources))
	for source, s := range settings.Sources {
		languages[source] = s.Language
	}
	resolver := services.NewResolver(cache, upstreams, services.ResolverOptions{
		TTL:              settings.Cache.TTL,
		NegativeTTL:      settings.Cache.NegativeTTL,
		BatchConcurrency: settings.Server.BatchConcurrency,
		SourceLanguages:  languages,
		Metrics:          m,
	})

	return &App{
		Settings:   settings,
		Config:     config,
		Cache:      cache,
		Resolver:   resolver,
		Hierarchy:  services.NewHierarchyService(resolver, settings.RootMapping, settings.Hierarchy.MaxDepth, m),
		Stats:      services.NewCacheStatsService(cache),
		Vocabulary: services.NewVocabularyService(vocab),
		Metrics:    m,
		registry:   registry,
	}, nil
}

// OpenCache opens the cache store selected by settings.Backend.
func OpenCache(settings domain.CacheSettings) (driven.CacheStore, error) {
	switch settings.Backend {
	case domain.CacheBackendFile, "":
		store, err := filecache.NewStore(settings.Dir, settings.TTL, settings.NegativeTTL)
		if err != nil {
			return nil, fmt.Errorf("opening file cache: %w", err)
		}
		logger.Debug("file cache at %s", store.Dir())
		return store, nil
	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(settings.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return store, nil
	case domain.CacheBackendMemory:
		return memory.NewCacheStore(), nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// Ports returns the driving ports served by the outer surfaces.
func (a *App) Ports() (driving.ResolverService, driving.HierarchyService, driving.CacheStatsService, driving.VocabularyService) {
	return a.Resolver, a.Hierarchy, a.Stats, a.Vocabulary
}

// MetricsHandler serves the instance's Prometheus registry.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry the metrics are registered with.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// WatchConfig applies configuration changes until ctx is done. Only the
// root mapping and log settings take effect without a restart.
func (a *App) WatchConfig(ctx context.Context) error {
	return a.Config.Watch(ctx, a.apply)
}

func (a *App) apply(settings domain.Settings) {
	a.Hierarchy.SetRootMapping(settings.RootMapping)
	applyLogSettings(settings.Log)

	a.mu.Lock()
	defer a.mu.Unlock()
	if settings.Cache != a.Settings.Cache || settings.Server != a.Settings.Server {
		logger.Warn("cache and server settings changed; restart to apply")
	}
	a.Settings = settings
}

// CurrentSettings returns the most recently loaded settings.
func (a *App) CurrentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

// Close releases the cache store.
func (a *App) Close() error {
	if a.Cache == nil {
		return nil
	}
	if err := a.Cache.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}
	return nil
}

func applyLogSettings(s domain.LogSettings) {
	if s.Level != "" {
		logger.SetLevel(s.Level)
	}
	logger.SetPretty(s.Pretty)
}
