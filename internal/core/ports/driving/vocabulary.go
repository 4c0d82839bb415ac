package driving

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// VocabularyService exposes the static package vocabulary.
type VocabularyService interface {
	List(ctx context.Context) (map[string]domain.VocabularyConcept, error)
	Get(ctx context.Context, id string) (*domain.VocabularyConcept, error)
}
