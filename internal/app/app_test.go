package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruh-integration-pages/internal/config"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	list := filepath.Join(dir, "connectorList.json")
	require.NoError(t, os.WriteFile(list, []byte(`[{"name":"Slack"},{"name":"Zoom","published":true}]`), 0o644))
	return &config.Config{
		Strapi:   config.StrapiConfig{Enabled: false},
		Taxonomy: config.TaxonomyConfig{Categories: filepath.Join(dir, "c.json"), Tags: filepath.Join(dir, "t.json")},
		Store:    config.StoreConfig{Driver: "json", Path: list},
		Output:   config.OutputConfig{Dir: filepath.Join(dir, "pages")},
	}
}

func TestNewWiresPipeline(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	st, err := a.Pipeline.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Status{Total: 2, Published: 1, Unpublished: 1, Next: "Slack"}, st)

	// taxonomy files are missing: classification degrades, nothing fails
	res := a.Classifier.Classify("Slack", "chat")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Categories)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "mongo"
	_, err := New(context.Background(), cfg, logger.Discard(), nil)
	require.Error(t, err)
}
