// Package app wires configuration into a ready pipeline. Both binaries
// build their dependencies here.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/cms"
	"ruh-integration-pages/internal/config"
	"ruh-integration-pages/internal/generator"
	"ruh-integration-pages/internal/pipeline"
	"ruh-integration-pages/internal/research"
	"ruh-integration-pages/internal/store"
	"ruh-integration-pages/pkg/logger"
)

type App struct {
	Config     *config.Config
	Log        *logger.Logger
	Store      store.Store
	Classifier *classifier.Classifier
	Pipeline   *pipeline.Pipeline
}

// New builds every dependency from cfg. reg receives the pipeline metrics
// and may be nil.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open connector store: %w", err)
	}

	cls := classifier.FromFiles(cfg.Taxonomy.Categories, cfg.Taxonomy.Tags,
		classifier.WithLimits(cfg.Taxonomy.MaxCategories, cfg.Taxonomy.MaxTags),
		classifier.WithLogger(log))

	res := research.New(cfg.SerpAPI.APIKey, cfg.SerpAPI.BaseURL, cfg.SerpAPI.Country, cfg.SerpAPI.Timeout, log)
	gen := generator.NewOpenAI(generator.Options{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, log)

	opts := []pipeline.Option{
		pipeline.WithClassifier(cls),
		pipeline.WithOutputDir(cfg.Output.Dir),
		pipeline.WithLogger(log),
		pipeline.WithMetrics(pipeline.NewMetrics(reg)),
	}
	if cfg.Strapi.Enabled {
		opts = append(opts, pipeline.WithPublisher(
			cms.New(cfg.Strapi.URL, cfg.Strapi.Path, cfg.Strapi.Token, cfg.Strapi.Timeout, log)))
	} else {
		log.Infof("CMS publishing disabled, pages are saved locally only")
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Store:      st,
		Classifier: cls,
		Pipeline:   pipeline.New(st, res, gen, opts...),
	}, nil
}

func (a *App) Close() error { return a.Store.Close() }
