package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingbok/tingbok/internal/core/domain"
)

type mapVocabulary map[string]domain.VocabularyConcept

func (m mapVocabulary) All() map[string]domain.VocabularyConcept {
	return m
}

func (m mapVocabulary) Get(id string) (domain.VocabularyConcept, error) {
	c, ok := m[id]
	if !ok {
		return domain.VocabularyConcept{}, domain.ErrNotFound
	}
	return c, nil
}

func TestVocabularyService(t *testing.T) {
	store := mapVocabulary{
		"food":            {ID: "food", PrefLabel: "Food", Narrower: []string{"food/vegetables"}},
		"food/vegetables": {ID: "food/vegetables", PrefLabel: "Vegetables", Broader: []string{"food"}},
	}
	service := NewVocabularyService(store)
	ctx := context.Background()

	all, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	c, err := service.Get(ctx, "food/vegetables")
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", c.PrefLabel)
	assert.Equal(t, []string{"food"}, c.Broader)

	_, err = service.Get(ctx, "tools")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVocabularyService_NoStore(t *testing.T) {
	service := NewVocabularyService(nil)

	_, err := service.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
