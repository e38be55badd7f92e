package chatbot

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// termMatcher compiles a case-insensitive alternation of the terms.
func termMatcher(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// snippet returns up to radius runes on each side of the first match, with
// whitespace collapsed. Without a match it returns the leading text.
func snippet(content string, re *regexp.Regexp, radius int) string {
	start, end := 0, 0
	if re != nil {
		if loc := re.FindStringIndex(content); loc != nil {
			start, end = loc[0], loc[1]
		}
	}

	for i := 0; i < radius && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(content[:start])
		start -= size
	}
	for i := 0; i < radius && end < len(content); i++ {
		_, size := utf8.DecodeRuneInString(content[end:])
		end += size
	}

	s := strings.Join(strings.Fields(content[start:end]), " ")
	if s == "" {
		return ""
	}
	if start > 0 {
		s = "..." + s
	}
	if end < len(content) {
		s += "..."
	}
	return s
}
