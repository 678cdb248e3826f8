package parser

import (
	"sort"
	"strings"
)

const (
	LabelTitle        = "Title"
	LabelOneLiner     = "One-line connector statement"
	LabelOverview     = "Overview paragraph"
	LabelCapabilities = "Core Capabilities"
	LabelWorkflows    = "Common Automation Workflows"
	LabelBenefits     = "Key Benefits"
	LabelSecurity     = "Security and Permissions"
	LabelFAQs         = "FAQs"
)

// boundary ends a section: a blank line followed by a bracketed label.
const boundary = "\n\n["

// Section describes one labeled block of a generated document.
type Section struct {
	Label string
	// Heading is the HTML heading the section renders under. Sections with
	// no heading become top-level payload fields instead of content.
	Heading  string
	Bulleted bool
}

// Layout is the label vocabulary in render order.
var Layout = []Section{
	{Label: LabelTitle},
	{Label: LabelOneLiner},
	{Label: LabelOverview, Heading: "Overview"},
	{Label: LabelCapabilities, Heading: "Core Capabilities", Bulleted: true},
	{Label: LabelWorkflows, Heading: "Common Automation Workflows", Bulleted: true},
	{Label: LabelBenefits, Heading: "Key Benefits", Bulleted: true},
	{Label: LabelSecurity, Heading: "Security and Permissions"},
	{Label: LabelFAQs},
}

// Sections maps a label to its extracted text. A missing key means the label
// was not found, which is different from a label with empty content.
type Sections map[string]string

func (s Sections) Get(label string) (string, bool) {
	v, ok := s[label]
	return v, ok
}

// Value returns the extracted text or "" when absent.
func (s Sections) Value(label string) string { return s[label] }

// Extract returns the trimmed content following "[label]" up to the next
// blank-line-prefixed bracket or the end of the document. ok is false when
// the label does not occur.
func Extract(document, label string) (content string, ok bool) {
	doc := normalizeNewlines(document)
	return extractAt(doc, boundaries(doc), label)
}

// ExtractAll locates every label of Layout independently. Boundaries are
// found in one forward pass and shared by all labels.
func ExtractAll(document string) Sections {
	doc := normalizeNewlines(document)
	bounds := boundaries(doc)
	out := Sections{}
	for _, sec := range Layout {
		if v, ok := extractAt(doc, bounds, sec.Label); ok {
			out[sec.Label] = v
		}
	}
	return out
}

func extractAt(doc string, bounds []int, label string) (string, bool) {
	marker := "[" + label + "]"
	i := strings.Index(doc, marker)
	if i < 0 {
		return "", false
	}
	start := i + len(marker)
	end := len(doc)
	if k := sort.SearchInts(bounds, start); k < len(bounds) {
		end = bounds[k]
	}
	return strings.TrimSpace(doc[start:end]), true
}

// boundaries returns the offsets of every boundary in ascending order.
func boundaries(doc string) []int {
	var out []int
	for off := 0; ; {
		j := strings.Index(doc[off:], boundary)
		if j < 0 {
			return out
		}
		out = append(out, off+j)
		off += j + len(boundary)
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
