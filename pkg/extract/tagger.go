package extract

import (
	"sort"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
)

// SpanLabel classifies a named span of text
type SpanLabel string

const (
	LabelPerson       SpanLabel = "PERSON"
	LabelOrganization SpanLabel = "ORG"
	LabelPlace        SpanLabel = "PLACE"
)

// Span is a substring of the input tagged with a category
type Span struct {
	Text  string
	Label SpanLabel
}

// Tagger classifies spans of text as person, organization or place names.
// Spans are returned in text order.
type Tagger interface {
	Tag(text string) ([]Span, error)
}

// TaggerFunc adapts a function to the Tagger interface
type TaggerFunc func(text string) ([]Span, error)

func (f TaggerFunc) Tag(text string) ([]Span, error) { return f(text) }

// ProseTagger tags named entities with prose's statistical model and adds
// organizations recognised by their corporate suffix.
type ProseTagger struct{}

// NewProseTagger creates a tagger backed by prose
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// locatedSpan is a span with its byte offset, or -1 when it was not found
type locatedSpan struct {
	start int
	span  Span
}

// Tag implements Tagger
func (t *ProseTagger) Tag(text string) ([]Span, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, errors.Wrap(err, "create prose document")
	}

	tagged := make([]Span, 0)
	orgs := mapset.NewSet[string]()
	for _, ent := range doc.Entities() {
		label, ok := proseLabel(ent.Label)
		if !ok {
			continue
		}
		value := ent.Text
		if label == LabelOrganization {
			value = trimLeadingNonName(value)
			orgs.Add(value)
		}
		tagged = append(tagged, Span{Text: value, Label: label})
	}

	spans := locateSpans(text, tagged)
	spans = append(spans, companySuffixSpans(text, orgs)...)
	return inTextOrder(spans), nil
}

// locateSpans finds each span left to right, falling back to the first
// occurrence when the model reordered or repeated a span.
func locateSpans(text string, spans []Span) []locatedSpan {
	located := make([]locatedSpan, 0, len(spans))
	cursor := 0
	for _, s := range spans {
		start := -1
		if idx := strings.Index(text[cursor:], s.Text); idx >= 0 {
			start = cursor + idx
			cursor = start + len(s.Text)
		} else if idx := strings.Index(text, s.Text); idx >= 0 {
			start = idx
		}
		located = append(located, locatedSpan{start: start, span: s})
	}
	return located
}

// companySuffixSpans returns suffix-rule organizations not already in known.
// Leading sentence words such as "Yesterday" or "Call" are not part of the name.
func companySuffixSpans(text string, known mapset.Set[string]) []locatedSpan {
	spans := make([]locatedSpan, 0)
	for _, loc := range companySuffixPattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		name := trimLeadingNonName(match)
		if len(strings.Fields(name)) < 2 || known.Contains(name) {
			continue
		}
		known.Add(name)
		start := loc[0] + len(match) - len(name)
		spans = append(spans, locatedSpan{start: start, span: Span{Text: name, Label: LabelOrganization}})
	}
	return spans
}

// trimLeadingNonName drops leading words that cannot open an organization
// name, keeping at least the last word.
func trimLeadingNonName(name string) string {
	rest := strings.TrimSpace(name)
	for {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 || !nonNameWords.Contains(strings.ToLower(strings.Trim(rest[:end], ",."))) {
			return rest
		}
		rest = strings.TrimSpace(rest[end:])
	}
}

func inTextOrder(located []locatedSpan) []Span {
	sort.SliceStable(located, func(i, j int) bool {
		a, b := located[i].start, located[j].start
		if a < 0 || b < 0 {
			return a >= 0 && b < 0
		}
		return a < b
	})
	spans := make([]Span, len(located))
	for i, l := range located {
		spans[i] = l.span
	}
	return spans
}

func proseLabel(label string) (SpanLabel, bool) {
	switch label {
	case "PERSON":
		return LabelPerson, true
	case "ORG", "ORGANIZATION":
		return LabelOrganization, true
	case "GPE", "LOC", "LOCATION", "FAC":
		return LabelPlace, true
	default:
		return "", false
	}
}
