package services

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
)

// Ensure VocabularyService implements the interface.
var _ driving.VocabularyService = (*VocabularyService)(nil)

// VocabularyService serves the static package vocabulary.
type VocabularyService struct {
	store driven.VocabularyStore
}

// NewVocabularyService creates a new vocabulary service.
func NewVocabularyService(store driven.VocabularyStore) *VocabularyService {
	return &VocabularyService{store: store}
}

// List returns every concept keyed by ID.
func (s *VocabularyService) List(_ context.Context) (map[string]domain.VocabularyConcept, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.All(), nil
}

// Get returns one concept by ID.
func (s *VocabularyService) Get(_ context.Context, id string) (*domain.VocabularyConcept, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
