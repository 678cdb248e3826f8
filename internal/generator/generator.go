// Package generator writes integration pages with an OpenAI-compatible chat
// completion API.
package generator

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/transport"
	"ruh-integration-pages/pkg/logger"
)

const (
	DefaultModel     = "openai/gpt-4o-mini"
	DefaultMaxTokens = 2500
	DefaultTimeout   = 120 * time.Second

	promptKeywords = 3
	promptSnippets = 3
)

var ErrEmptyContent = errors.New("generator: model returned no content")

//go:embed prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("page").Parse(promptText))

// Generator produces the labeled page document for a connector.
type Generator interface {
	Generate(ctx context.Context, name string, r models.Research) (string, error)
}

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type OpenAI struct {
	client *openai.Client
	opts   Options
	log    *logger.Logger
}

func NewOpenAI(opts Options, log *logger.Logger) *OpenAI {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = transport.NewClient(opts.Timeout, 0, 0).HTTP()

	log.Debugf("generator initialised, model %s", opts.Model)
	return &OpenAI{client: openai.NewClientWithConfig(cfg), opts: opts, log: log}
}

type promptData struct {
	Name             string
	Facts            string
	Snippets         []models.Snippet
	PrimaryKeyword   string
	RelatedKeywords  string
	LongTailKeywords string
}

// Prompt renders the page prompt for name from the research results.
func Prompt(name string, r models.Research) (string, error) {
	kw := r.Keywords
	primary := kw.Keyword
	if primary == "" {
		primary = name + " integration"
	}
	data := promptData{
		Name:             name,
		Facts:            r.Facts,
		Snippets:         kw.FactualSnippets[:min(len(kw.FactualSnippets), promptSnippets)],
		PrimaryKeyword:   primary,
		RelatedKeywords:  strings.Join(kw.RelatedKeywords[:min(len(kw.RelatedKeywords), promptKeywords)], ", "),
		LongTailKeywords: strings.Join(kw.LongTailKeywords[:min(len(kw.LongTailKeywords), promptKeywords)], ", "),
	}
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// Generate asks the model for one page and returns its trimmed text.
func (g *OpenAI) Generate(ctx context.Context, name string, r models.Research) (string, error) {
	prompt, err := Prompt(name, r)
	if err != nil {
		return "", err
	}

	log := g.log.With("connector", name)
	log.Infof("generating page with %s", g.opts.Model)
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyContent
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyContent
	}
	log.Infof("generated %d characters in %s (tokens: %d)", len(content), time.Since(start).Round(time.Millisecond), resp.Usage.TotalTokens)
	return content, nil
}
