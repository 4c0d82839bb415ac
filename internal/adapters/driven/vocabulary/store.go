// Package vocabulary loads the static package vocabulary from YAML.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VocabularyStore = (*Store)(nil)

//go:embed data/vocabulary.yaml
var builtin []byte

// Store is an immutable, in-memory vocabulary.
type Store struct {
	concepts map[string]domain.VocabularyConcept
}

// file is the YAML document shape.
type file struct {
	Concepts map[string]entry `yaml:"concepts"`
}

type entry struct {
	PrefLabel    string              `yaml:"prefLabel"`
	AltLabel     map[string][]string `yaml:"altLabel"`
	Broader      stringList          `yaml:"broader"`
	Narrower     stringList          `yaml:"narrower"`
	URI          string              `yaml:"uri"`
	Labels       map[string]string   `yaml:"labels"`
	Description  string              `yaml:"description"`
	WikipediaURL string              `yaml:"wikipediaUrl"`
}

// stringList accepts a scalar or a sequence.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = stringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", node.Line)
	}
}

// Builtin returns the vocabulary shipped with the binary.
func Builtin() (*Store, error) {
	return Parse(builtin)
}

// Load reads a vocabulary file. An empty path loads the built-in vocabulary.
func Load(path string) (*Store, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Parse decodes a vocabulary document.
func Parse(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	concepts := make(map[string]domain.VocabularyConcept, len(f.Concepts))
	for id, e := range f.Concepts {
		c := domain.VocabularyConcept{
			ID:           id,
			PrefLabel:    e.PrefLabel,
			AltLabel:     e.AltLabel,
			Broader:      []string(e.Broader),
			Narrower:     []string(e.Narrower),
			URI:          e.URI,
			Labels:       domain.Labels(e.Labels),
			Description:  e.Description,
			WikipediaURL: e.WikipediaURL,
		}
		if c.PrefLabel == "" {
			c.PrefLabel = id
		}
		if c.AltLabel == nil {
			c.AltLabel = map[string][]string{}
		}
		if c.Broader == nil {
			c.Broader = []string{}
		}
		if c.Narrower == nil {
			c.Narrower = []string{}
		}
		if c.Labels == nil {
			c.Labels = domain.Labels{}
		}
		concepts[id] = c
	}
	return &Store{concepts: concepts}, nil
}

// All returns every concept keyed by ID. The map is a copy.
func (s *Store) All() map[string]domain.VocabularyConcept {
	out := make(map[string]domain.VocabularyConcept, len(s.concepts))
	for id, c := range s.concepts {
		out[id] = c
	}
	return out
}

// Get returns one concept or domain.ErrNotFound.
func (s *Store) Get(id string) (domain.VocabularyConcept, error) {
	c, ok := s.concepts[id]
	if !ok {
		return domain.VocabularyConcept{}, fmt.Errorf("%w: concept '%s'", domain.ErrNotFound, id)
	}
	return c, nil
}

// IDs returns the concept IDs in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.concepts))
	for id := range s.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of concepts.
func (s *Store) Len() int {
	return len(s.concepts)
}
