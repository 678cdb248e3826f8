package classifier

import (
	"sort"
	"strings"

	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/taxonomy"
	"ruh-integration-pages/pkg/logger"
)

const (
	// nameWeight applies when the keyword also appears in the entity name.
	nameWeight    = 10
	contentWeight = 2

	DefaultMaxCategories = 3
	DefaultMaxTags       = 2
)

// haystack is the lowercase text keywords are counted in.
func haystack(entityName, content string) string {
	return strings.ToLower(entityName) + " " + strings.ToLower(content)
}

// Score ranks every taxonomy entry against entityName and content. Each
// non-overlapping substring occurrence of a keyword counts; there is no
// tokenisation or word-boundary check, so "sync" also matches inside
// "synchronize". Entries with no match are left out. The result is ordered by
// score, highest first, with ties kept in taxonomy order.
func Score(entityName, content string, entries []models.TaxonomyEntry) []models.ScoredEntry {
	text := haystack(entityName, content)
	name := strings.ToLower(entityName)

	var scored []models.ScoredEntry
	for _, e := range entries {
		score := 0
		var matched []string
		for _, kw := range e.Keywords {
			kwLower := strings.ToLower(kw)
			if kwLower == "" {
				continue
			}
			count := strings.Count(text, kwLower)
			if count == 0 {
				continue
			}
			if strings.Contains(name, kwLower) {
				score += count * nameWeight
			} else {
				score += count * contentWeight
			}
			matched = append(matched, kw)
		}
		if score > 0 {
			scored = append(scored, models.ScoredEntry{
				ID:              e.ID,
				Name:            e.Name,
				Score:           score,
				MatchedKeywords: matched,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Match returns the ids of the top maxResults entries. Ids are unique even if
// the taxonomy repeats one.
func Match(entityName, content string, maxResults int, entries []models.TaxonomyEntry) []int {
	return ids(top(Score(entityName, content, entries), maxResults))
}

func top(scored []models.ScoredEntry, n int) []models.ScoredEntry {
	if n <= 0 {
		return nil
	}
	out := make([]models.ScoredEntry, 0, n)
	seen := make(map[int]struct{}, n)
	for _, s := range scored {
		if len(out) == n {
			break
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func ids(scored []models.ScoredEntry) []int {
	out := make([]int, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.ID)
	}
	return out
}

func names(scored []models.ScoredEntry) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Name)
	}
	return out
}

// Result is the outcome of classifying one document. Err is set when the
// taxonomy was unavailable; the id lists are then empty, never nil.
type Result struct {
	Categories []int
	Tags       []int
	Err        error
}

type Classifier struct {
	store         *taxonomy.Store
	loadErr       error
	maxCategories int
	maxTags       int
	log           *logger.Logger
}

type Option func(*Classifier)

func WithLimits(maxCategories, maxTags int) Option {
	return func(c *Classifier) {
		c.maxCategories = maxCategories
		c.maxTags = maxTags
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Classifier) { c.log = l }
}

// New builds a classifier over store. A nil store is allowed: Classify then
// reports ErrNoTaxonomy and returns empty lists.
func New(store *taxonomy.Store, opts ...Option) *Classifier {
	c := &Classifier{
		store:         store,
		maxCategories: DefaultMaxCategories,
		maxTags:       DefaultMaxTags,
		log:           logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromFiles loads both taxonomy files. A load failure is kept and reported by
// every Classify call instead of being returned, so publishing can go on
// without classification.
func FromFiles(categoriesPath, tagsPath string, opts ...Option) *Classifier {
	store, err := taxonomy.LoadStore(categoriesPath, tagsPath)
	c := New(store, opts...)
	if err != nil {
		c.store = nil
		c.loadErr = err
		c.log.Warnf("taxonomy unavailable, pages will be published unclassified: %v", err)
	}
	return c
}

// Classify scores content against both taxonomies independently.
func (c *Classifier) Classify(entityName, content string) Result {
	if c == nil {
		return Result{Categories: []int{}, Tags: []int{}, Err: ErrNoTaxonomy}
	}
	if c.store == nil {
		err := c.loadErr
		if err == nil {
			err = ErrNoTaxonomy
		}
		return Result{Categories: []int{}, Tags: []int{}, Err: err}
	}

	cats := top(Score(entityName, content, c.store.Categories()), c.maxCategories)
	tags := top(Score(entityName, content, c.store.Tags()), c.maxTags)
	if len(cats) > 0 {
		c.log.Infof("matched categories for %s: %s", entityName, strings.Join(names(cats), ", "))
	}
	if len(tags) > 0 {
		c.log.Infof("matched tags for %s: %s", entityName, strings.Join(names(tags), ", "))
	}
	return Result{Categories: ids(cats), Tags: ids(tags)}
}

// Explain returns the full scored lists, for the CLI.
func (c *Classifier) Explain(entityName, content string) (categories, tags []models.ScoredEntry, err error) {
	if c == nil || c.store == nil {
		if c != nil && c.loadErr != nil {
			return nil, nil, c.loadErr
		}
		return nil, nil, ErrNoTaxonomy
	}
	return Score(entityName, content, c.store.Categories()), Score(entityName, content, c.store.Tags()), nil
}
