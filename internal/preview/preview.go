// Package preview renders a publish payload as Markdown for review in a
// terminal or pull request before it reaches the CMS.
package preview

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"ruh-integration-pages/internal/models"
)

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

type Converter struct {
	converter *md.Converter
}

func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// HTML converts a content fragment to Markdown.
func (c *Converter) HTML(fragment string) (string, error) {
	out, err := c.converter.ConvertString(fragment)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(excessiveLinesRe.ReplaceAllString(out, "\n\n")), nil
}

// Page renders the hero title, description, content body and FAQs.
func (c *Converter) Page(p models.PublishPayload) (string, error) {
	body, err := c.HTML(p.Content)
	if err != nil {
		return "", fmt.Errorf("convert content: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.HeroTitle)
	fmt.Fprintf(&b, "> %s\n\n", p.Description)
	b.WriteString(body)
	b.WriteString("\n")
	if len(p.FAQs) > 0 {
		b.WriteString("\n## FAQs\n")
		for _, f := range p.FAQs {
			fmt.Fprintf(&b, "\n**%s**\n\n%s\n", f.Question, f.Answer)
		}
	}
	return b.String(), nil
}
