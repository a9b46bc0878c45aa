package processors

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// TextProcessor passes plain text and markdown notes through unchanged
type TextProcessor struct{}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

// Process validates the note is UTF-8 and strips a leading byte order mark
func (p *TextProcessor) Process(ctx context.Context, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("note is not valid UTF-8")
	}
	return strings.TrimPrefix(string(content), "\ufeff"), nil
}

// SupportedTypes returns the MIME types supported by the TextProcessor
func (p *TextProcessor) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown"}
}

// ContentTypeFor maps a note file extension to the content type a processor
// is registered for. Unknown extensions map to "".
func ContentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".txt", ".text":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".pdf":
		return "application/pdf"
	}
	return ""
}
