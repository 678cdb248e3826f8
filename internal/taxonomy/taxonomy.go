// Package taxonomy loads the category and tag reference lists used to
// classify integration pages.
package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ruh-integration-pages/internal/models"
)

var ErrMalformed = errors.New("malformed taxonomy")

// Load reads a taxonomy file: a list of {id, name, keywords} objects in JSON
// or YAML, chosen by extension. Unknown extensions are tried as JSON.
func Load(path string) ([]models.TaxonomyEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}

	var entries []models.TaxonomyEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := validate(entries); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func validate(entries []models.TaxonomyEntry) error {
	seen := make(map[int]struct{}, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrMalformed, i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrMalformed, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Store holds both taxonomies. It is immutable once built.
type Store struct {
	categories []models.TaxonomyEntry
	tags       []models.TaxonomyEntry
}

func NewStore(categories, tags []models.TaxonomyEntry) *Store {
	return &Store{
		categories: clone(categories),
		tags:       clone(tags),
	}
}

// LoadStore loads the category and tag files.
func LoadStore(categoriesPath, tagsPath string) (*Store, error) {
	cats, err := Load(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	tags, err := Load(tagsPath)
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	return NewStore(cats, tags), nil
}

// Categories returns a copy of the categories in file order.
func (s *Store) Categories() []models.TaxonomyEntry { return clone(s.categories) }

// Tags returns a copy of the tags in file order.
func (s *Store) Tags() []models.TaxonomyEntry { return clone(s.tags) }

func (s *Store) CategoryByID(id int) (models.TaxonomyEntry, bool) { return byID(s.categories, id) }

func (s *Store) TagByID(id int) (models.TaxonomyEntry, bool) { return byID(s.tags, id) }

func byID(entries []models.TaxonomyEntry, id int) (models.TaxonomyEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.TaxonomyEntry{}, false
}

func clone(in []models.TaxonomyEntry) []models.TaxonomyEntry {
	out := make([]models.TaxonomyEntry, len(in))
	for i, e := range in {
		out[i] = models.TaxonomyEntry{
			ID:       e.ID,
			Name:     e.Name,
			Keywords: append([]string(nil), e.Keywords...),
		}
	}
	return out
}
