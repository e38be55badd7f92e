package converter

import (
	"context"

	docsysSvc "docvault/internal/domain/services/docsystem"
)

// markdownConverter stores markdown source as-is; it is already plain text.
type markdownConverter struct{}

func NewMarkdownConverter() docsysSvc.ContentConverter {
	return &markdownConverter{}
}

func (c *markdownConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return normalizeText(input), nil
}

func (c *markdownConverter) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (c *markdownConverter) Name() string {
	return "markdown"
}
