package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tingbok/tingbok/internal/core/domain"
)

var validate = validator.New()

// document mirrors the TOML file. Pointer fields distinguish "absent" from
// zero so that defaults survive partial files.
type document struct {
	Cache       *cacheSection            `toml:"cache"`
	Hierarchy   *hierarchySection        `toml:"hierarchy"`
	Server      *serverSection           `toml:"server"`
	Log         *logSection              `toml:"log"`
	Vocabulary  *vocabularySection       `toml:"vocabulary"`
	Sources     map[string]sourceSection `toml:"sources" validate:"dive"`
	RootMapping *rootMappingSection      `toml:"root_mapping"`
}

type cacheSection struct {
	Backend     *string `toml:"backend" validate:"omitempty,oneof=file sqlite memory"`
	Dir         *string `toml:"dir"`
	TTL         *string `toml:"ttl"`
	NegativeTTL *string `toml:"negative_ttl"`
}

type hierarchySection struct {
	MaxDepth *int `toml:"max_depth" validate:"omitempty,min=1,max=100"`
}

type serverSection struct {
	Addr             *string `toml:"addr" validate:"omitempty,hostname_port|startswith=:"`
	BatchConcurrency *int    `toml:"batch_concurrency" validate:"omitempty,min=1,max=64"`
}

type logSection struct {
	Level  *string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Pretty *bool   `toml:"pretty"`
}

type vocabularySection struct {
	Path *string `toml:"path"`
}

type sourceSection struct {
	Enabled           *bool    `toml:"enabled"`
	BaseURL           *string  `toml:"base_url" validate:"omitempty,url"`
	SearchURL         *string  `toml:"search_url" validate:"omitempty,url"`
	Timeout           *string  `toml:"timeout"`
	Language          *string  `toml:"language" validate:"omitempty,min=2,max=8"`
	RequestsPerSecond *float64 `toml:"requests_per_second" validate:"omitempty,gte=0"`
	Burst             *int     `toml:"burst" validate:"omitempty,gte=0"`
	MaxRetries        *int     `toml:"max_retries" validate:"omitempty,gte=0,lte=10"`
	UserAgent         *string  `toml:"user_agent"`
}

type rootMappingSection struct {
	// Replace drops the built-in table instead of extending it.
	Replace bool                         `toml:"replace"`
	URI     map[string]map[string]string `toml:"uri"`
	Label   map[string]map[string]string `toml:"label"`
}

// apply validates d and overlays it onto s.
func (d *document) apply(s *domain.Settings) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if c := d.Cache; c != nil {
		if c.Backend != nil {
			s.Cache.Backend = domain.CacheBackend(*c.Backend)
		}
		if c.Dir != nil {
			s.Cache.Dir = expandHome(*c.Dir)
		}
		if err := setDuration(&s.Cache.TTL, c.TTL, "cache.ttl"); err != nil {
			return err
		}
		if err := setDuration(&s.Cache.NegativeTTL, c.NegativeTTL, "cache.negative_ttl"); err != nil {
			return err
		}
	}
	if h := d.Hierarchy; h != nil && h.MaxDepth != nil {
		s.Hierarchy.MaxDepth = *h.MaxDepth
	}
	if sv := d.Server; sv != nil {
		setValue(&s.Server.Addr, sv.Addr)
		setValue(&s.Server.BatchConcurrency, sv.BatchConcurrency)
	}
	if l := d.Log; l != nil {
		setValue(&s.Log.Level, l.Level)
		setValue(&s.Log.Pretty, l.Pretty)
	}
	if v := d.Vocabulary; v != nil && v.Path != nil {
		s.Vocabulary.Path = expandHome(*v.Path)
	}

	for name, sec := range d.Sources {
		source := domain.Source(name)
		if !source.IsValid() {
			return fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, name)
		}
		if err := sec.apply(source, s); err != nil {
			return err
		}
	}

	if d.RootMapping != nil {
		mapping, err := d.RootMapping.merge(s.RootMapping)
		if err != nil {
			return err
		}
		s.RootMapping = mapping
	}
	return nil
}

func (sec sourceSection) apply(source domain.Source, s *domain.Settings) error {
	cfg := s.Sources[source]
	setValue(&cfg.Enabled, sec.Enabled)
	if sec.BaseURL != nil {
		cfg.BaseURL = strings.TrimRight(*sec.BaseURL, "/")
	}
	if sec.SearchURL != nil {
		cfg.SearchURL = strings.TrimRight(*sec.SearchURL, "/")
	}
	if err := setDuration(&cfg.Timeout, sec.Timeout, "sources."+string(source)+".timeout"); err != nil {
		return err
	}
	setValue(&cfg.Language, sec.Language)
	setValue(&cfg.RequestsPerSecond, sec.RequestsPerSecond)
	setValue(&cfg.Burst, sec.Burst)
	setValue(&cfg.MaxRetries, sec.MaxRetries)
	setValue(&cfg.UserAgent, sec.UserAgent)
	if s.Sources == nil {
		s.Sources = make(map[domain.Source]domain.SourceSettings)
	}
	s.Sources[source] = cfg
	return nil
}

// merge builds the effective mapping from base and the file tables.
// Label keys are lower-cased to match lookup.
func (r *rootMappingSection) merge(base *domain.RootMapping) (*domain.RootMapping, error) {
	out := &domain.RootMapping{
		ByURI:   make(map[domain.Source]map[string]string),
		ByLabel: make(map[domain.Source]map[string]string),
	}
	if base != nil && !r.Replace {
		copyTables(out.ByURI, base.ByURI, false)
		copyTables(out.ByLabel, base.ByLabel, false)
	}

	for _, name := range append(keys(r.URI), keys(r.Label)...) {
		if !domain.Source(name).IsValid() {
			return nil, fmt.Errorf("%w: root_mapping for unknown source %q", domain.ErrInvalidInput, name)
		}
	}
	copyTables(out.ByURI, toSourceTables(r.URI), false)
	copyTables(out.ByLabel, toSourceTables(r.Label), true)
	return out, nil
}

func copyTables(dst, src map[domain.Source]map[string]string, lower bool) {
	for source, table := range src {
		if dst[source] == nil {
			dst[source] = make(map[string]string, len(table))
		}
		for k, v := range table {
			if lower {
				k = strings.ToLower(strings.TrimSpace(k))
			}
			dst[source][k] = v
		}
	}
}

func toSourceTables(in map[string]map[string]string) map[domain.Source]map[string]string {
	out := make(map[domain.Source]map[string]string, len(in))
	for name, table := range in {
		out[domain.Source(name)] = table
	}
	return out
}

func keys(m map[string]map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, field string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*v))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, field)
	}
	*dst = d
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
