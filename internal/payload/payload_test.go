package payload

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/parser"
)

const fullDoc = `[Title]
Zendesk + Ruh AI: Support Automation

[One-line connector statement]
Connect Zendesk with Ruh AI to triage tickets automatically.

[Overview paragraph]
Ruh AI reads incoming tickets and routes them to the right team.

[Core Capabilities]
* Ticket Sync: Tickets, users and organizations.

[Common Automation Workflows]
* Auto Triage: New tickets are tagged on arrival.

[Key Benefits]
* Faster Resolution: Agents start with context.

[Security and Permissions]
OAuth 2.0 scoped access.
`

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func assemble(name, doc string) Input {
	s := parser.ExtractAll(doc)
	return Input{
		Name:     name,
		Logo:     "https://cdn.example.com/logo.png",
		Sections: s,
		Document: doc,
		FAQs:     parser.ParseFAQs(s.Value(parser.LabelFAQs), name),
		Now:      fixedNow,
	}
}

func TestAssembleFullDocument(t *testing.T) {
	in := assemble("Zendesk", fullDoc)
	in.Categories = []int{4, 9}
	in.Tags = []int{1}
	p := Assemble(in)

	assert.Equal(t, "Zendesk", p.Name)
	assert.Equal(t, "Zendesk + Ruh AI: Support Automation", p.HeroTitle)
	assert.Equal(t, "Connect Zendesk with Ruh AI to triage tickets automatically.", p.Description)
	assert.Equal(t, "zendesk", p.Slug)
	assert.Equal(t, "https://cdn.example.com/logo.png", p.Icon)
	assert.Equal(t, []int{4, 9}, p.Category)
	assert.Equal(t, []int{1}, p.Tags)
	assert.Equal(t, parser.FallbackFAQs("Zendesk"), p.FAQs)
	assert.Equal(t, "2025-03-04T05:06:07.000000Z", p.PublishedAt)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Content))
	require.NoError(t, err)
	var hs []string
	doc.Find("h1,h2,h3").Each(func(_ int, s *goquery.Selection) { hs = append(hs, s.Text()) })
	assert.Equal(t, []string{"Overview", "Core Capabilities", "Common Automation Workflows", "Key Benefits", "Security and Permissions"}, hs)
	assert.NotContains(t, p.Content, "Support Automation")
	assert.NotContains(t, p.Content, "triage tickets automatically")

	seo := p.SEO
	assert.Equal(t, MetaRobots, seo.MetaRobots)
	assert.Equal(t, MetaViewport, seo.MetaViewport)
	assert.NotContains(t, seo.MetaRobots, ",")
	assert.NotContains(t, seo.MetaViewport, ",")
	assert.Equal(t, "https://ruh.ai/integrations/zendesk", seo.CanonicalURL)
	assert.Equal(t, seo.CanonicalURL, seo.OpenGraph.OGURL)
	assert.Equal(t, p.Icon, seo.MetaImage)
	assert.Equal(t, p.Icon, seo.OpenGraph.OGImage)
	assert.Equal(t, p.Icon, seo.TwitterCard.TwitterImage)
	assert.Equal(t, "website", seo.OpenGraph.OGType)
	assert.Equal(t, "summary_large_image", seo.TwitterCard.TwitterCard)
	assert.Equal(t, "@ruh_ai", seo.TwitterCard.TwitterSite)
	assert.Equal(t, "@ruh_ai", seo.TwitterCard.TwitterCreator)
	assert.Equal(t, "https://schema.org", seo.StructuredData.Context)
	assert.Equal(t, "SoftwareApplication", seo.StructuredData.Type)
	assert.Equal(t, "Zendesk + Ruh AI Integration", seo.StructuredData.Name)
	assert.Equal(t, p.Description, seo.StructuredData.Description)

	// sixteen candidates, so the alphabetically last one is cut
	assert.Equal(t, "automatically, automation, connect, incoming, integration, reads, right, routes, "+
		"ruh ai, support, team, them, tickets, triage, workflow", seo.Keywords)

	require.NoError(t, Validate(p))
}

func TestAssembleFallbacks(t *testing.T) {
	doc := "Nothing here is labeled.\nSecond line & more"
	p := Assemble(assemble("Acme Corp", doc))

	assert.Equal(t, "Acme Corp + Ruh AI Integration", p.HeroTitle)
	assert.Equal(t, "Integration between Acme Corp and Ruh AI", p.Description)
	assert.Equal(t, "Acme Corp + Ruh AI Integration", p.SEO.MetaTitle)
	assert.Equal(t, "Integration between Acme Corp and Ruh AI", p.SEO.OpenGraph.OGDescription)
	assert.Equal(t, "<div>Nothing here is labeled.<br>Second line &amp; more</div>", p.Content)
	assert.Equal(t, "automation, integration, ruh ai, workflow", p.SEO.Keywords)
	assert.Equal(t, []int{}, p.Category)
	assert.Equal(t, []int{}, p.Tags)
	require.NoError(t, Validate(p))
}

func TestAssembleEmptyLabelsKeepEmptyValues(t *testing.T) {
	doc := "[Title]\n\n[One-line connector statement]\n\n[Overview paragraph]\nBody text here.\n"
	p := Assemble(assemble("Acme", doc))

	assert.Equal(t, "", p.HeroTitle)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "", p.SEO.MetaTitle)
	assert.Equal(t, "", p.SEO.MetaDescription)
	assert.Equal(t, "", p.SEO.OpenGraph.OGTitle)
	assert.Equal(t, "", p.SEO.TwitterCard.TwitterDescription)
	assert.Equal(t, "<h2>Overview</h2><p>Body text here.</p>", p.Content)
}

func TestAssembleMissingLabelsUseDefaults(t *testing.T) {
	doc := "[Overview paragraph]\nBody text here.\n"
	p := Assemble(assemble("Acme", doc))

	assert.Equal(t, "Acme + Ruh AI Integration", p.HeroTitle)
	assert.Equal(t, "Integration between Acme and Ruh AI", p.Description)
	assert.Equal(t, "Acme + Ruh AI Integration", p.SEO.MetaTitle)
	assert.Equal(t, "Integration between Acme and Ruh AI", p.SEO.MetaDescription)
}

func TestAssembleFallsBackWhenBodyIsEmpty(t *testing.T) {
	doc := "[Title]\nAcme + Ruh AI\n\n[One-line connector statement]\nConnect Acme."
	p := Assemble(assemble("Acme", doc))

	assert.Equal(t, "Acme + Ruh AI", p.HeroTitle)
	assert.Equal(t, "Connect Acme.", p.Description)
	assert.Equal(t, "<div>[Title]<br>Acme + Ruh AI<br><br>[One-line connector statement]<br>Connect Acme.</div>", p.Content)
}

func TestAssembleEmptyFAQsUseFallback(t *testing.T) {
	in := assemble("Jira", fullDoc)
	in.FAQs = nil
	assert.Equal(t, parser.FallbackFAQs("Jira"), Assemble(in).FAQs)
}

func TestAssembleTruncatesTitle(t *testing.T) {
	title := strings.Repeat("abcdefghij", 10)
	require.Len(t, title, 100)
	p := Assemble(assemble("Asana", "[Title]\n"+title+"\n\n[Overview paragraph]\nBody"))

	assert.Equal(t, title, p.HeroTitle)
	assert.Equal(t, title[:60], p.SEO.MetaTitle)
	assert.Equal(t, title[:70], p.SEO.OpenGraph.OGTitle)
	assert.Equal(t, title[:70], p.SEO.TwitterCard.TwitterTitle)
}

func TestAssembleTruncatesDescription(t *testing.T) {
	line := strings.Repeat("x", 250)
	p := Assemble(assemble("Asana", "[One-line connector statement]\n"+line))

	assert.Equal(t, line[:160], p.SEO.MetaDescription)
	assert.Equal(t, line[:200], p.SEO.OpenGraph.OGDescription)
	assert.Equal(t, line[:200], p.SEO.TwitterCard.TwitterDescription)
	assert.Equal(t, line[:200], p.SEO.StructuredData.Description)
}

func TestAssembleWithoutTaxonomy(t *testing.T) {
	dir := t.TempDir()
	c := classifier.FromFiles(filepath.Join(dir, "categories.json"), filepath.Join(dir, "tags.json"))
	res := c.Classify("Zendesk", fullDoc)
	require.Error(t, res.Err)

	in := assemble("Zendesk", fullDoc)
	in.Categories = res.Categories
	in.Tags = res.Tags
	p := Assemble(in)
	require.NoError(t, Validate(p))

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"name", "heroTitle", "description", "slug", "icon", "content", "category", "tags", "faqs", "seo", "publishedAt"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, []any{}, decoded["category"])
	assert.Equal(t, []any{}, decoded["tags"])
	seo := decoded["seo"].(map[string]any)
	assert.Contains(t, seo, "openGraph")
	assert.Contains(t, seo, "twitterCard")
	assert.Contains(t, seo["structuredData"], "@context")
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"HubSpot":            "hubspot",
		"Google Sheets":      "google-sheets",
		"Sales.Force (Inc.)": "sales-force-inc-",
		"Monday.com":         "monday-com",
		"Monday.com - CRM":   "monday-com---crm",
		"Zoho CRM (Beta)":    "zoho-crm-beta",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Slug(name))
			assert.Equal(t, Slug(name), Slug(name))
		})
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 60))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

func TestValidateRejects(t *testing.T) {
	p := Assemble(assemble("Asana", fullDoc))
	p.SEO.MetaRobots = "index, follow"
	p.SEO.MetaTitle = strings.Repeat("t", 61)
	err := Validate(p)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "metaRobots contains a comma")
	assert.Contains(t, err.Error(), "metaTitle has 61 characters")
}
