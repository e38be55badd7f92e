package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	docsysSvc "docvault/internal/domain/services/docsystem"
)

// ErrUnsupported is returned for files no converter handles.
var ErrUnsupported = errors.New("unsupported file type")

// ConverterRegistry routes files to content converters by extension.
//
// Thread-safe for concurrent access.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]docsysSvc.ContentConverter // key: file extension (e.g., ".pdf")
}

// NewConverterRegistry creates a registry with the standard converters registered.
func NewConverterRegistry() *ConverterRegistry {
	registry := &ConverterRegistry{
		converters: make(map[string]docsysSvc.ContentConverter),
	}

	registry.Register(NewPDFConverter())
	registry.Register(NewMarkdownConverter())
	registry.Register(NewTextConverter())
	registry.Register(NewHTMLConverter())

	return registry
}

// Register associates a converter with its extensions. Extensions are
// normalized to lowercase with a leading dot; later registrations win.
func (r *ConverterRegistry) Register(converter docsysSvc.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range converter.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = converter
	}
}

// GetConverter returns nil if no converter is registered for the extension.
// Lookup is case-insensitive.
func (r *ConverterRegistry) GetConverter(fileExt string) docsysSvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(fileExt)]
}

// Supports reports whether filename has a registered converter.
func (r *ConverterRegistry) Supports(filename string) bool {
	return r.GetConverter(filepath.Ext(filename)) != nil
}

// Convert picks the converter from the file extension and extracts text.
func (r *ConverterRegistry) Convert(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	converter := r.GetConverter(ext)
	if converter == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	text, err := converter.Convert(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%s converter: %w", converter.Name(), err)
	}
	return text, nil
}

// SupportedExtensions returns all registered file extensions.
func (r *ConverterRegistry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	return exts
}
