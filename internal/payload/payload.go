// Package payload assembles the CMS record for one integration page.
package payload

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/parser"
)

// The CMS schema validator rejects commas in these two fields.
const (
	MetaRobots   = "index follow"
	MetaViewport = "width=device-width initial-scale=1"
)

const (
	PageBaseURL    = "https://ruh.ai/integrations/"
	SchemaContext  = "https://schema.org"
	SchemaType     = "SoftwareApplication"
	OGType         = "website"
	TwitterCard    = "summary_large_image"
	TwitterAccount = "@ruh_ai"
)

// field limits, in characters
const (
	MetaTitleMax          = 60
	OGTitleMax            = 70
	TwitterTitleMax       = 70
	MetaDescriptionMax    = 160
	OGDescriptionMax      = 200
	TwitterDescriptionMax = 200
	StructuredDescMax     = 200
)

// Input is everything Assemble needs for one connector.
type Input struct {
	Name string
	Logo string
	// Sections as returned by parser.ExtractAll.
	Sections parser.Sections
	// Document is the raw generated text, rendered as a single block when no
	// section produces body HTML.
	Document   string
	Categories []int
	Tags       []int
	FAQs       []models.FAQPair
	Now        time.Time
}

// Assemble derives every payload field from in. Each field follows its own
// fallback rule, so a missing section never fails the payload.
func Assemble(in Input) models.PublishPayload {
	slug := Slug(in.Name)
	pageURL := PageBaseURL + slug
	title := HeroTitle(in.Name, in.Sections)
	desc := Description(in.Name, in.Sections)

	content := parser.RenderHTML(in.Sections)
	if strings.TrimSpace(content) == "" {
		content = parser.FallbackHTML(in.Document)
	}

	faqs := in.FAQs
	if len(faqs) == 0 {
		faqs = parser.FallbackFAQs(in.Name)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	return models.PublishPayload{
		Name:        in.Name,
		HeroTitle:   title,
		Description: desc,
		Slug:        slug,
		Icon:        in.Logo,
		Content:     content,
		Category:    ids(in.Categories),
		Tags:        ids(in.Tags),
		FAQs:        faqs,
		SEO: models.SEO{
			MetaTitle:       Truncate(title, MetaTitleMax),
			MetaDescription: Truncate(desc, MetaDescriptionMax),
			MetaImage:       in.Logo,
			Keywords: classifier.ExtractKeywords(
				in.Sections.Value(parser.LabelTitle),
				in.Sections.Value(parser.LabelOneLiner),
				in.Sections.Value(parser.LabelOverview),
			),
			MetaRobots:   MetaRobots,
			MetaViewport: MetaViewport,
			CanonicalURL: pageURL,
			StructuredData: models.StructuredData{
				Context:     SchemaContext,
				Type:        SchemaType,
				Name:        in.Name + " + Ruh AI Integration",
				Description: Truncate(desc, StructuredDescMax),
			},
			OpenGraph: models.OpenGraph{
				OGTitle:       Truncate(title, OGTitleMax),
				OGDescription: Truncate(desc, OGDescriptionMax),
				OGImage:       in.Logo,
				OGURL:         pageURL,
				OGType:        OGType,
			},
			TwitterCard: models.TwitterCard{
				TwitterCard:        TwitterCard,
				TwitterTitle:       Truncate(title, TwitterTitleMax),
				TwitterDescription: Truncate(desc, TwitterDescriptionMax),
				TwitterImage:       in.Logo,
				TwitterSite:        TwitterAccount,
				TwitterCreator:     TwitterAccount,
			},
		},
		PublishedAt: Timestamp(now),
	}
}

// HeroTitle is the extracted title, or the default when the [Title] label is
// missing. A label with an empty body stays empty.
func HeroTitle(name string, s parser.Sections) string {
	if title, ok := s.Get(parser.LabelTitle); ok {
		return title
	}
	return name + " + Ruh AI Integration"
}

func Description(name string, s parser.Sections) string {
	if oneLiner, ok := s.Get(parser.LabelOneLiner); ok {
		return oneLiner
	}
	return "Integration between " + name + " and Ruh AI"
}

// Slug lowercases name, turns spaces and dots into hyphens and drops
// parentheses. Hyphen runs are left as they are.
func Slug(name string) string {
	return slugReplacer.Replace(strings.ToLower(name))
}

var slugReplacer = strings.NewReplacer(" ", "-", "(", "", ")", "", ".", "-")

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Timestamp formats t as UTC ISO-8601 with a trailing Z.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

func ids(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

var ErrInvalid = errors.New("payload: invalid")

// Validate checks the constraints the CMS enforces on its side.
func Validate(p models.PublishPayload) error {
	var problems []string
	if p.Name == "" {
		problems = append(problems, "name is empty")
	}
	if p.Slug == "" {
		problems = append(problems, "slug is empty")
	}
	if p.Content == "" {
		problems = append(problems, "content is empty")
	}
	if strings.Contains(p.SEO.MetaRobots, ",") {
		problems = append(problems, "metaRobots contains a comma")
	}
	if strings.Contains(p.SEO.MetaViewport, ",") {
		problems = append(problems, "metaViewport contains a comma")
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"metaTitle", p.SEO.MetaTitle, MetaTitleMax},
		{"metaDescription", p.SEO.MetaDescription, MetaDescriptionMax},
		{"ogTitle", p.SEO.OpenGraph.OGTitle, OGTitleMax},
		{"ogDescription", p.SEO.OpenGraph.OGDescription, OGDescriptionMax},
		{"twitterTitle", p.SEO.TwitterCard.TwitterTitle, TwitterTitleMax},
		{"twitterDescription", p.SEO.TwitterCard.TwitterDescription, TwitterDescriptionMax},
	}
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.value); n > l.max {
			problems = append(problems, fmt.Sprintf("%s has %d characters (max %d)", l.field, n, l.max))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
