package parser

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	bulletMarker = "*"
	labelStyle   = "font-weight: 600;"
)

// RenderHTML renders the content body. Sections are emitted in Layout order;
// absent or empty ones produce nothing, and Title and the one-liner are
// never part of the body.
func RenderHTML(s Sections) string {
	var parts []string
	for _, sec := range Layout {
		if sec.Heading == "" {
			continue
		}
		body, ok := s.Get(sec.Label)
		if !ok || body == "" {
			continue
		}
		if sec.Bulleted {
			parts = append(parts, "<h2>"+sec.Heading+"</h2>")
			parts = append(parts, bulletsToHTML(body))
			continue
		}
		parts = append(parts, "<h2>"+sec.Heading+"</h2><p>"+body+"</p>")
	}
	return strings.Join(parts, "\n")
}

// bulletsToHTML renders "* label: text" lines as list items with a
// semi-bold label. Lines that are not bullets are skipped; text without any
// bullet becomes a single paragraph.
func bulletsToHTML(text string) string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, bulletMarker) {
			continue
		}
		item := strings.TrimSpace(line[len(bulletMarker):])
		if label, desc, found := strings.Cut(item, ":"); found {
			items = append(items, "<li><p><span style='"+labelStyle+"'>"+strings.TrimSpace(label)+":</span> "+strings.TrimSpace(desc)+"</p></li>")
		} else {
			items = append(items, "<li><p>"+item+"</p></li>")
		}
	}
	if len(items) == 0 {
		return "<p>" + text + "</p>"
	}
	return "<ul>\n" + strings.Join(items, "\n") + "\n</ul>"
}

// FallbackHTML wraps a whole document that has no recognisable sections as a
// single escaped block, keeping its line breaks.
func FallbackHTML(document string) string {
	escaped := html.EscapeString(normalizeNewlines(document))
	return "<div>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</div>"
}
