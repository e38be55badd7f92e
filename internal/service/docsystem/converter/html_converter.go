package converter

import (
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/service/docsystem/converter/sanitizer"
)

// htmlConverter extracts readable text from HTML uploads.
// The page is sanitized first, then rendered to markdown, which keeps
// headings and lists legible in search snippets.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates the HTML text extractor.
func NewHTMLConverter() docsysSvc.ContentConverter {
	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	clean := c.sanitizer.Sanitize(string(input))

	text, err := c.converter.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string {
	return "html"
}
