package converter

import (
	"context"
	"strings"
	"unicode/utf8"

	docsysSvc "docvault/internal/domain/services/docsystem"
)

// textConverter handles plain text and text-like exports.
type textConverter struct{}

// NewTextConverter creates a new text converter.
func NewTextConverter() docsysSvc.ContentConverter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return normalizeText(input), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

func (c *textConverter) Name() string {
	return "plaintext"
}

// normalizeText drops invalid UTF-8 (Postgres TEXT rejects it), strips a
// byte order mark, and normalizes line endings.
func normalizeText(input []byte) string {
	s := string(input)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
