// Package pipeline turns pending connectors into published integration
// pages, one at a time: research, generate, save, assemble, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/cms"
	"ruh-integration-pages/internal/generator"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/parser"
	"ruh-integration-pages/internal/payload"
	"ruh-integration-pages/internal/research"
	"ruh-integration-pages/internal/store"
	"ruh-integration-pages/pkg/logger"
)

var (
	ErrNoPending       = errors.New("pipeline: all connectors have been published")
	ErrPublishDisabled = errors.New("pipeline: CMS publishing is disabled")
)

const (
	DefaultOutputDir = "integration-pages"
	retryNote        = "content saved locally, you can retry publishing later"
)

type Pipeline struct {
	store      store.Store
	research   research.Researcher
	gen        generator.Generator
	publisher  cms.Publisher
	classifier *classifier.Classifier
	outputDir  string
	log        *logger.Logger
	metrics    *Metrics
	now        func() time.Time
	sleep      func(context.Context, time.Duration) error
}

type Option func(*Pipeline)

// WithPublisher enables CMS publishing. Without it pages are only saved.
func WithPublisher(p cms.Publisher) Option { return func(pl *Pipeline) { pl.publisher = p } }

func WithClassifier(c *classifier.Classifier) Option {
	return func(pl *Pipeline) { pl.classifier = c }
}

func WithOutputDir(dir string) Option { return func(pl *Pipeline) { pl.outputDir = dir } }

func WithLogger(l *logger.Logger) Option { return func(pl *Pipeline) { pl.log = l } }

func WithMetrics(m *Metrics) Option { return func(pl *Pipeline) { pl.metrics = m } }

func WithClock(now func() time.Time) Option { return func(pl *Pipeline) { pl.now = now } }

// WithSleep replaces the pause between batch items.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(pl *Pipeline) { pl.sleep = sleep }
}

func New(st store.Store, r research.Researcher, g generator.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     st,
		research:  r,
		gen:       g,
		outputDir: DefaultOutputDir,
		log:       logger.Discard(),
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FileName is the local file a connector's page is saved to.
func FileName(name string) string {
	return strings.NewReplacer(" ", "-", "/", "-", `\`, "-").Replace(strings.ToLower(name)) + ".txt"
}

func (p *Pipeline) Status(ctx context.Context) (models.Status, error) {
	list, err := p.store.LoadAll(ctx)
	if err != nil {
		return models.Status{}, err
	}
	return store.Summarize(list), nil
}

// Next processes the first unpublished connector.
func (p *Pipeline) Next(ctx context.Context) (models.Outcome, error) {
	return p.next(ctx, p.log.With("run", uuid.NewString()))
}

func (p *Pipeline) next(ctx context.Context, log *logger.Logger) (models.Outcome, error) {
	list, err := p.store.LoadAll(ctx)
	if err != nil {
		return models.Outcome{}, err
	}
	c, ok := store.NextPending(list)
	if !ok {
		return models.Outcome{}, ErrNoPending
	}
	return p.process(ctx, c, log), nil
}

// Process generates, saves and publishes one connector's page. Failures are
// reported in the outcome.
func (p *Pipeline) Process(ctx context.Context, c models.Connector) models.Outcome {
	return p.process(ctx, c, p.log.With("run", uuid.NewString()))
}

func (p *Pipeline) process(ctx context.Context, c models.Connector, log *logger.Logger) models.Outcome {
	start := time.Now()
	log = log.With("connector", c.Name)
	out := models.Outcome{Connector: c.Name}
	fail := func(format string, args ...any) models.Outcome {
		out.Error = fmt.Sprintf(format, args...)
		out.Duration = time.Since(start)
		log.Errorf("%s", out.Error)
		p.metrics.PagesFailed.Inc()
		return out
	}

	log.Infof("generating page")
	res := p.research.Research(ctx, c.Name)
	content, err := p.gen.Generate(ctx, c.Name, res)
	if err != nil {
		return fail("generate page: %v", err)
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return fail("create output dir: %v", err)
	}
	path := filepath.Join(p.outputDir, FileName(c.Name))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fail("save page: %v", err)
	}
	out.File = path
	log.Infof("saved to %s", path)

	if p.publisher != nil {
		pub := p.publish(ctx, c.Name, c.Logo, content, log)
		out.Publish = &pub
		if !pub.Success {
			out.Note = retryNote
			log.Warnf("publish failed: %s; %s", pub.Error, retryNote)
		}
	}

	// the local file is the completion criterion, not CMS acceptance
	if err := p.store.MarkPublished(ctx, c.Name); err != nil {
		return fail("mark published: %v", err)
	}

	out.Success = true
	out.Duration = time.Since(start)
	p.metrics.PagesGenerated.Inc()
	p.metrics.GenerationSeconds.Observe(out.Duration.Seconds())
	return out
}

func (p *Pipeline) publish(ctx context.Context, name, logo, document string, log *logger.Logger) models.PublishResult {
	pl := p.BuildPayload(name, logo, document)
	if err := payload.Validate(pl); err != nil {
		log.Warnf("payload may be rejected: %v", err)
	}
	res := p.publisher.Publish(ctx, pl)
	if !res.Success {
		p.metrics.PublishFailures.Inc()
	}
	return res
}

// BuildPayload parses a generated document and assembles the CMS payload.
// A missing taxonomy leaves the payload unclassified.
func (p *Pipeline) BuildPayload(name, logo, document string) models.PublishPayload {
	sections := parser.ExtractAll(document)
	cls := p.classifier.Classify(name, document)
	if cls.Err != nil {
		p.metrics.ClassificationFailures.Inc()
		p.log.With("connector", name).Warnf("classification skipped: %v", cls.Err)
	}
	return payload.Assemble(payload.Input{
		Name:       name,
		Logo:       logo,
		Sections:   sections,
		Document:   document,
		Categories: cls.Categories,
		Tags:       cls.Tags,
		FAQs:       parser.ParseFAQs(sections.Value(parser.LabelFAQs), name),
		Now:        p.now(),
	})
}

// Republish publishes an already saved page again. The ledger is left
// untouched.
func (p *Pipeline) Republish(ctx context.Context, name string) (models.PublishResult, error) {
	if p.publisher == nil {
		return models.PublishResult{}, ErrPublishDisabled
	}
	list, err := p.store.LoadAll(ctx)
	if err != nil {
		return models.PublishResult{}, err
	}
	var (
		c     models.Connector
		found bool
	)
	for _, item := range list {
		if item.Name == name {
			c, found = item, true
			break
		}
	}
	if !found {
		return models.PublishResult{}, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}

	path := filepath.Join(p.outputDir, FileName(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("read saved page: %w", err)
	}
	doc, err := parser.Decode(data, "")
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("decode %s: %w", path, err)
	}

	log := p.log.With("run", uuid.NewString(), "connector", name)
	log.Infof("republishing %s", path)
	return p.publish(ctx, name, c.Logo, doc, log), nil
}
