package parser

import (
	"fmt"
	"strings"

	"ruh-integration-pages/internal/models"
)

// MinFAQs is the fewest parsed pairs accepted before the fallback set is used.
const MinFAQs = 3

// ParseFAQs turns the FAQs section into question/answer pairs. With fewer
// than MinFAQs usable pairs (an absent section included) the whole list is
// replaced by FallbackFAQs; parsed and fallback pairs are never mixed.
func ParseFAQs(section, connectorName string) []models.FAQPair {
	pairs := ExtractFAQPairs(section)
	if len(pairs) < MinFAQs {
		return FallbackFAQs(connectorName)
	}
	return pairs
}

// ExtractFAQPairs splits text into blocks that each start on a line beginning
// with "Q:". The question runs up to the "A:" marker and the answer to the
// end of the block. Blocks missing either part are dropped.
func ExtractFAQPairs(section string) []models.FAQPair {
	var blocks [][]string
	for _, line := range strings.Split(normalizeNewlines(section), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Q:") {
			blocks = append(blocks, []string{trimmed})
			continue
		}
		if len(blocks) > 0 {
			last := len(blocks) - 1
			blocks[last] = append(blocks[last], trimmed)
		}
	}

	var out []models.FAQPair
	for _, b := range blocks {
		q, a, ok := splitBlock(b)
		if !ok {
			continue
		}
		out = append(out, models.FAQPair{Question: q, Answer: a})
	}
	return out
}

// splitBlock finds the answer marker: a line starting with "A:", or failing
// that an inline "A:" preceded by whitespace.
func splitBlock(lines []string) (question, answer string, ok bool) {
	lines[0] = strings.TrimPrefix(lines[0], "Q:")
	for i, l := range lines {
		if i > 0 && strings.HasPrefix(l, "A:") {
			question = strings.TrimSpace(strings.Join(lines[:i], "\n"))
			answer = strings.TrimSpace(strings.Join(append([]string{strings.TrimPrefix(l, "A:")}, lines[i+1:]...), "\n"))
			return question, answer, question != "" && answer != ""
		}
	}

	block := strings.Join(lines, "\n")
	for off := 0; off < len(block); {
		j := strings.Index(block[off:], "A:")
		if j < 0 {
			break
		}
		at := off + j
		if at > 0 && (block[at-1] == ' ' || block[at-1] == '\t' || block[at-1] == '\n') {
			question = strings.TrimSpace(block[:at])
			answer = strings.TrimSpace(block[at+len("A:"):])
			return question, answer, question != "" && answer != ""
		}
		off = at + len("A:")
	}
	return "", "", false
}

// FallbackFAQs is the synthetic set used when a page has too few FAQs.
func FallbackFAQs(connectorName string) []models.FAQPair {
	return []models.FAQPair{
		{
			Question: fmt.Sprintf("What is %s integration with Ruh AI?", connectorName),
			Answer: fmt.Sprintf("%s integration with Ruh AI enables seamless automation and data synchronization between %s and your enterprise systems.",
				connectorName, connectorName),
		},
		{
			Question: fmt.Sprintf("How does %s integration work?", connectorName),
			Answer:   "The integration uses bi-directional data flow to automatically sync information between systems, reducing manual entry and improving accuracy.",
		},
		{
			Question: "Is the integration secure?",
			Answer:   "Yes, all data transfers are encrypted in transit and at rest, with SOC 2 Type II compliance and GDPR readiness built-in.",
		},
	}
}
