package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruh-integration-pages/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "categories.json", `[
  {"id": 8, "name": "CRM", "keywords": ["crm", "customer relationship", "deal"]},
  {"id": 12, "name": "Scheduling", "keywords": ["calendar", "meeting"]}
]`)
	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 8, entries[0].ID)
	assert.Equal(t, []string{"crm", "customer relationship", "deal"}, entries[0].Keywords)
	assert.Equal(t, "Scheduling", entries[1].Name)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "tags.yaml", `- id: 1
  name: Native
  keywords: [native, built-in]
- id: 2
  name: API
  keywords:
    - api
    - webhook
`)
	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"api", "webhook"}, entries[1].Keywords)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/categories.json")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", `{"id": 1`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Load(writeFile(t, "dup.json", `[{"id":1,"name":"a","keywords":[]},{"id":1,"name":"b","keywords":[]}]`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Load(writeFile(t, "noname.json", `[{"id":1,"name":" ","keywords":["x"]}]`))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestStoreIsImmutable(t *testing.T) {
	cats := []models.TaxonomyEntry{{ID: 3, Name: "CRM", Keywords: []string{"crm"}}}
	s := NewStore(cats, nil)
	cats[0].Keywords[0] = "changed"

	got := s.Categories()
	assert.Equal(t, "crm", got[0].Keywords[0])
	got[0].Name = "mutated"

	e, ok := s.CategoryByID(3)
	require.True(t, ok)
	assert.Equal(t, "CRM", e.Name)

	_, ok = s.TagByID(3)
	assert.False(t, ok)
}

func TestLoadStore(t *testing.T) {
	cats := writeFile(t, "categories.json", `[{"id":1,"name":"CRM","keywords":["crm"]}]`)
	tags := writeFile(t, "tags.json", `[{"id":9,"name":"API","keywords":["api"]}]`)

	s, err := LoadStore(cats, tags)
	require.NoError(t, err)
	assert.Len(t, s.Categories(), 1)
	assert.Len(t, s.Tags(), 1)

	_, err = LoadStore(cats, "/nonexistent/tags.json")
	assert.Error(t, err)
}
