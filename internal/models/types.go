package models

import (
	"encoding/json"
	"time"
)

// TaxonomyEntry is one category or tag. Categories and tags share the shape
// but live in independent id spaces.
type TaxonomyEntry struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

type ScoredEntry struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
}

type FAQPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type StructuredData struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type OpenGraph struct {
	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`
	OGURL         string `json:"ogUrl"`
	OGType        string `json:"ogType"`
}

type TwitterCard struct {
	TwitterCard        string `json:"twitterCard"`
	TwitterTitle       string `json:"twitterTitle"`
	TwitterDescription string `json:"twitterDescription"`
	TwitterImage       string `json:"twitterImage"`
	TwitterSite        string `json:"twitterSite"`
	TwitterCreator     string `json:"twitterCreator"`
}

type SEO struct {
	MetaTitle       string         `json:"metaTitle"`
	MetaDescription string         `json:"metaDescription"`
	MetaImage       string         `json:"metaImage"`
	Keywords        string         `json:"keywords"`
	MetaRobots      string         `json:"metaRobots"`
	MetaViewport    string         `json:"metaViewport"`
	CanonicalURL    string         `json:"canonicalURL"`
	StructuredData  StructuredData `json:"structuredData"`
	OpenGraph       OpenGraph      `json:"openGraph"`
	TwitterCard     TwitterCard    `json:"twitterCard"`
}

// PublishPayload is the body POSTed to the CMS, unwrapped.
type PublishPayload struct {
	Name        string    `json:"name"`
	HeroTitle   string    `json:"heroTitle"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Icon        string    `json:"icon"`
	Content     string    `json:"content"`
	Category    []int     `json:"category"`
	Tags        []int     `json:"tags"`
	FAQs        []FAQPair `json:"faqs"`
	SEO         SEO       `json:"seo"`
	PublishedAt string    `json:"publishedAt"`
}

// PublishResult is the outcome of a CMS call. Failures are values, not errors.
type PublishResult struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type Snippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type KeywordData struct {
	Keyword           string    `json:"keyword"`
	SearchVolume      int       `json:"searchVolume"`
	CPC               float64   `json:"cpc"`
	Competition       string    `json:"competition"`
	RelatedKeywords   []string  `json:"relatedKeywords"`
	LongTailKeywords  []string  `json:"longTailKeywords"`
	FactualSnippets   []Snippet `json:"factualSnippets,omitempty"`
	Source            string    `json:"source"`
	NumOrganicResults int       `json:"numOrganicResults,omitempty"`
	NumAds            int       `json:"numAds,omitempty"`
}

// Research bundles everything the generator is given about a connector.
type Research struct {
	Keywords KeywordData `json:"keywords"`
	Facts    string      `json:"facts"`
}

type Status struct {
	Total       int    `json:"total"`
	Published   int    `json:"published"`
	Unpublished int    `json:"unpublished"`
	Next        string `json:"next"`
}

type Outcome struct {
	Connector string         `json:"connector"`
	Success   bool           `json:"success"`
	File      string         `json:"file,omitempty"`
	Publish   *PublishResult `json:"publish,omitempty"`
	Note      string         `json:"note,omitempty"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration"`
}
