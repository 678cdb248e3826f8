// Package research gathers SEO keywords and short factual snippets about a
// connector from SerpAPI. When the API is unavailable it falls back to a
// deterministic estimate, so callers always get usable data.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/transport"
	"ruh-integration-pages/pkg/logger"
)

const (
	DefaultBaseURL = "https://serpapi.com/search"
	DefaultCountry = "us"
	DefaultTimeout = 30 * time.Second

	SourceSerpAPI   = "serpapi"
	SourceEstimated = "estimated"

	topResults = 5
)

// placeholder shipped in the sample env file
const placeholderKey = "your_serpapi_api_key_here"

// Researcher is what the pipeline needs from a research provider.
type Researcher interface {
	Research(ctx context.Context, name string) models.Research
}

type Client struct {
	apiKey  string
	baseURL string
	country string
	http    *transport.Client
	log     *logger.Logger
}

func New(apiKey, baseURL, country string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if country == "" {
		country = DefaultCountry
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		country: country,
		http:    transport.NewClient(timeout, 0, 0),
		log:     log,
	}
}

// Enabled reports whether a real API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.apiKey != placeholderKey
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
	RelatedQuestions []struct {
		Question string `json:"question"`
	} `json:"related_questions"`
	Ads []json.RawMessage `json:"ads"`
}

// Lookup researches one query. It never fails: a missing key, a transport
// error, a non-2xx status or an undecodable body all yield Estimate(query).
func (c *Client) Lookup(ctx context.Context, query string) models.KeywordData {
	if !c.Enabled() {
		c.log.Warnf("no SerpAPI key configured, estimating keyword data for %q", query)
		return Estimate(query)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("gl", c.country)
	params.Set("hl", "en")
	params.Set("num", "10")

	c.log.Debugf("searching SerpAPI for %q", query)
	resp, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		c.log.Errorf("SerpAPI request for %q failed: %v", query, err)
		return Estimate(query)
	}
	if !resp.OK() {
		c.log.Errorf("SerpAPI returned HTTP %d for %q: %s", resp.StatusCode, query, transport.Snippet(resp.Body, 200))
		return Estimate(query)
	}

	var serp serpResponse
	if err := json.Unmarshal(resp.Body, &serp); err != nil {
		c.log.Errorf("decode SerpAPI response for %q: %v", query, err)
		return Estimate(query)
	}
	return insights(query, serp)
}

func insights(keyword string, serp serpResponse) models.KeywordData {
	organic := len(serp.OrganicResults)

	var snippets []models.Snippet
	for _, r := range serp.OrganicResults[:min(organic, topResults)] {
		if r.Snippet == "" {
			continue
		}
		snippets = append(snippets, models.Snippet{Title: r.Title, Snippet: r.Snippet, Link: r.Link})
	}

	var related []string
	for _, r := range serp.RelatedSearches[:min(len(serp.RelatedSearches), topResults)] {
		related = append(related, r.Query)
	}
	var longTail []string
	for _, q := range serp.RelatedQuestions[:min(len(serp.RelatedQuestions), topResults)] {
		longTail = append(longTail, q.Question)
	}
	if len(related) == 0 {
		related = relatedDefaults(keyword)
	}
	if len(longTail) == 0 {
		longTail = longTailDefaults(keyword)
	}

	ads := len(serp.Ads)
	competition, cpc := "low", 1.5
	switch {
	case ads >= 3:
		competition, cpc = "high", 3.5
	case ads >= 1:
		competition, cpc = "medium", 2.5
	}

	return models.KeywordData{
		Keyword:           keyword,
		SearchVolume:      min(max(organic*10, 500), 5000),
		CPC:               cpc,
		Competition:       competition,
		RelatedKeywords:   related,
		LongTailKeywords:  longTail,
		FactualSnippets:   snippets,
		Source:            SourceSerpAPI,
		NumOrganicResults: organic,
		NumAds:            ads,
	}
}

// Estimate is the offline stand-in for a search. The volume is derived
// from the keyword's characters so repeated runs agree.
func Estimate(keyword string) models.KeywordData {
	sum := 0
	for _, r := range strings.ToLower(keyword) {
		sum += int(r)
	}
	return models.KeywordData{
		Keyword:          keyword,
		SearchVolume:     500 + sum%1000,
		CPC:              2.5,
		Competition:      "medium",
		RelatedKeywords:  relatedDefaults(keyword),
		LongTailKeywords: longTailDefaults(keyword),
		Source:           SourceEstimated,
	}
}

func relatedDefaults(k string) []string {
	return []string{
		k + " software",
		k + " platform",
		k + " tool",
		"best " + k,
		"top " + k,
	}
}

func longTailDefaults(k string) []string {
	return []string{
		"how to use " + k,
		k + " integration guide",
		"best " + k + " for business",
		k + " automation workflow",
		k + " vs alternatives",
	}
}

// Research runs the keyword lookup for "<name> integration" and three fact
// queries, and summarises which of them the search provider could confirm.
func (c *Client) Research(ctx context.Context, name string) models.Research {
	log := c.log.With("connector", name)
	log.Infof("researching SEO keywords")
	kw := c.Lookup(ctx, name+" integration")

	queries := []string{
		name + " features",
		"what is " + name,
		name + " capabilities",
	}
	var facts []string
	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		if d := c.Lookup(ctx, q); d.Source == SourceSerpAPI {
			facts = append(facts, fmt.Sprintf("Search for '%s' indicates this is a real tool with documented features.", q))
		}
	}

	summary := strings.Join(facts, "\n")
	if summary == "" {
		summary = fmt.Sprintf("Limited public information available about %s. Generate content based on general integration capabilities.", name)
		log.Warnf("limited factual data found, using general approach")
	}
	return models.Research{Keywords: kw, Facts: summary}
}
