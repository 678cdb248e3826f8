package classifier

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

var ErrNoTaxonomy = errors.New("classifier: no taxonomy loaded")

const maxSEOKeywords = 15

// stopwords removed from SEO keywords (extend as needed)
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// domainKeywords are always part of the SEO keyword list.
var domainKeywords = []string{"integration", "automation", "workflow", "ruh ai"}

var wordRe = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// ExtractKeywords builds the SEO keywords field: alphabetic words of four or
// more letters from the given texts, lowercased and de-duplicated, minus stop
// words, plus the domain keywords, sorted, first 15, joined by ", ".
func ExtractKeywords(texts ...string) string {
	set := map[string]struct{}{}
	for _, t := range texts {
		for _, w := range wordRe.FindAllString(strings.ToLower(t), -1) {
			if _, stop := stopwords[w]; stop {
				continue
			}
			set[w] = struct{}{}
		}
	}
	for _, k := range domainKeywords {
		set[k] = struct{}{}
	}

	list := make([]string, 0, len(set))
	for k := range set {
		list = append(list, k)
	}
	sort.Strings(list)
	if len(list) > maxSEOKeywords {
		list = list[:maxSEOKeywords]
	}
	return strings.Join(list, ", ")
}
