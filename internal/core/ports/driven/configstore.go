package driven

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// ConfigStore provides the runtime configuration.
type ConfigStore interface {
	// Load reads and validates the configuration.
	Load() (domain.Settings, error)

	// Path returns where the configuration is read from.
	Path() string

	// Watch calls onChange with freshly loaded settings whenever the
	// configuration changes, until ctx is done.
	Watch(ctx context.Context, onChange func(domain.Settings)) error
}
