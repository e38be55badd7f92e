package chatbot

import (
	"regexp"
	"strings"

	"docvault/internal/config"
)

var (
	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	nonWord     = regexp.MustCompile(`[^\w\s]`)
)

// ExtractKeywords returns capitalized words first, then lowercase words
// longer than two characters. Stopwords are dropped and duplicates are
// removed case-insensitively.
func (k *Knowledge) ExtractKeywords(query string) []string {
	candidates := namePattern.FindAllString(query, -1)
	candidates = append(candidates, strings.Fields(nonWord.ReplaceAllString(strings.ToLower(query), " "))...)

	seen := make(map[string]struct{}, len(candidates))
	keywords := make([]string, 0, config.ChatMaxKeywords)
	for _, w := range candidates {
		lower := strings.ToLower(w)
		if len(lower) <= 2 || k.isStopword(lower) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == config.ChatMaxKeywords {
			break
		}
	}
	return keywords
}
