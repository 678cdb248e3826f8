package parser

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Decode converts a generated document read from disk to a UTF-8 string.
// contentType may be empty; the encoding is then sniffed from the bytes
// (BOMs included).
func Decode(data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	enc, name, _ := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" || name == "" {
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		if utf8.Valid(data) {
			return string(data), nil
		}
	}
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return "", err
		}
		utf8data = data
	}
	return string(utf8data), nil
}

// Stats summarises a rendered content fragment.
type Stats struct {
	WordCount int      `json:"wordCount"`
	Headings  []string `json:"headings,omitempty"`
	Items     int      `json:"items"`
}

// ContentStats parses an HTML fragment and counts the words in its
// paragraphs and list items.
func ContentStats(fragment string) (Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Stats{}, err
	}

	doc.Find("br").ReplaceWithHtml(" ")

	var st Stats
	doc.Find("h1,h2,h3").Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t != "" {
			st.Headings = append(st.Headings, t)
		}
	})
	st.Items = doc.Find("li").Length()

	// li bodies are wrapped in <p>, so only count top-level paragraphs and
	// list items once
	var parts []string
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t != "" {
			parts = append(parts, t)
		}
	})
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		if s.Find("p").Length() == 0 {
			parts = append(parts, strings.TrimSpace(s.Text()))
		}
	})
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
	if text != "" {
		st.WordCount = len(strings.Fields(text))
	}
	return st, nil
}
