package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// ConfigStore reads domain.Settings from a TOML file.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
	last     []byte
}

// NewConfigStore creates a config store for path.
// If path is empty, defaults to $XDG_CONFIG_HOME/tingbok/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "tingbok", "config.toml")
	}
	return &ConfigStore{filePath: expandHome(path)}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the file over the defaults. A missing file is not an error.
func (s *ConfigStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file yet - that's fine, run on defaults
			s.remember(nil)
			return settings, nil
		}
		return domain.Settings{}, err
	}

	if err := Parse(data, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("%s: %w", s.filePath, err)
	}
	s.remember(data)
	return settings, nil
}

// Parse decodes TOML data over settings.
func Parse(data []byte, settings *domain.Settings) error {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return doc.apply(settings)
}

func (s *ConfigStore) remember(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = data
}

// changed reports whether data differs from the last loaded content.
func (s *ConfigStore) changed(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !bytes.Equal(s.last, data)
}

// Watch reloads the file when it changes and passes valid settings to
// onChange. Invalid edits are logged and the previous settings stay in
// effect. Blocks until ctx is done.
//
// The parent directory is watched rather than the file, so atomic saves
// (write temp + rename) are seen too.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(domain.Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("watching %s for configuration changes", s.filePath)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error: %v", err)

		case <-fire:
			fire = nil
			s.reload(onChange)
		}
	}
}

func (s *ConfigStore) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

func (s *ConfigStore) reload(onChange func(domain.Settings)) {
	data, err := os.ReadFile(s.filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("reading %s: %v", s.filePath, err)
		return
	}
	if !s.changed(data) {
		return
	}

	settings := domain.DefaultSettings()
	if len(data) > 0 {
		if err := Parse(data, &settings); err != nil {
			logger.Warn("ignoring invalid configuration: %v", err)
			return
		}
	}
	s.remember(data)
	logger.Info("configuration reloaded from %s", s.filePath)
	onChange(settings)
}
