package memory

import (
	"context"
	"sync"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for
// tests and ephemeral runs. Set plays the role of editing the file.
type ConfigStore struct {
	mu       sync.RWMutex
	settings domain.Settings
	watchers map[int]func(domain.Settings)
	nextID   int
}

// NewConfigStore creates a config store holding settings.
func NewConfigStore(settings domain.Settings) *ConfigStore {
	return &ConfigStore{
		settings: settings,
		watchers: make(map[int]func(domain.Settings)),
	}
}

// Load returns the current settings.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// Set replaces the settings and notifies every active watcher.
func (s *ConfigStore) Set(settings domain.Settings) {
	s.mu.Lock()
	s.settings = settings
	watchers := make([]func(domain.Settings), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(settings)
	}
}

// Watch registers onChange until ctx is done. Blocks.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(domain.Settings)) error {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = onChange
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
	return nil
}

// Watching returns the number of active watchers.
func (s *ConfigStore) Watching() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

// Path returns the configuration location.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
