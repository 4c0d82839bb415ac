package driven

import "github.com/tingbok/tingbok/internal/core/domain"

// VocabularyStore serves the static package vocabulary.
type VocabularyStore interface {
	// All returns every concept keyed by ID.
	All() map[string]domain.VocabularyConcept

	// Get returns one concept or domain.ErrNotFound.
	Get(id string) (domain.VocabularyConcept, error)
}
