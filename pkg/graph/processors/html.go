package processors

import (
	"bytes"
	"context"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// HTMLProcessor converts HTML notes, such as exported web clippings, to text
type HTMLProcessor struct{}

// NewHTMLProcessor creates a new instance of HTMLProcessor.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{}
}

// Process drops non-content elements and renders the body as markdown so
// sentence and list boundaries survive for the extractors.
func (p *HTMLProcessor) Process(ctx context.Context, content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse HTML note")
	}

	doc.Find("script, style, noscript, head").Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", errors.Wrap(err, "failed to render HTML body")
	}

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		// Fall back to the bare text content.
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}
	return strings.TrimSpace(md), nil
}

// SupportedTypes returns the MIME types supported by the HTMLProcessor.
func (p *HTMLProcessor) SupportedTypes() []string {
	return []string{"text/html"}
}
