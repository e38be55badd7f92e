package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	docsysSvc "docvault/internal/domain/services/docsystem"
)

// pdfConverter pulls the text layer out of PDF files. Scanned PDFs without
// a text layer yield an empty string.
type pdfConverter struct{}

func NewPDFConverter() docsysSvc.ContentConverter {
	return &pdfConverter{}
}

func (c *pdfConverter) Convert(ctx context.Context, input []byte) (text string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return normalizeText(buf.Bytes()), nil
}

func (c *pdfConverter) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (c *pdfConverter) Name() string {
	return "pdf"
}
