package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
	"github.com/pkg/errors"
)

var (
	// slashDatePattern reads numeric dates month first: 1/5/2027 is January 5.
	slashDatePattern = regexp.MustCompile(`\b(1[0-2]|0?[1-9])/(3[01]|[12][0-9]|0?[1-9])(?:/([0-9]{4}|[0-9]{2}))?\b`)

	// listSeparator splits date lists such as "Tomorrow, Friday, and next Monday".
	listSeparator = regexp.MustCompile(`\s*(?:,|;|&|\band\b|\bor\b)\s*`)
)

// DateMatch is one natural-language date expression found in text
type DateMatch struct {
	// Index is the byte offset of the match start.
	Index int
	Text  string
	Time  time.Time
}

// DateParser finds absolute and relative date expressions, resolving them
// against now. Matches are returned in text order.
type DateParser interface {
	ParseAll(text string, now time.Time) ([]DateMatch, error)
}

// WhenDateParser parses English date expressions with olebedev/when.
// Numeric slash dates are month first, matching the local display layout.
type WhenDateParser struct {
	parser *when.Parser
}

// NewWhenDateParser creates a parser with the English rule set. when's common
// rules read slash dates day first, so slash dates are handled separately.
func NewWhenDateParser() *WhenDateParser {
	w := when.New(nil)
	w.Add(en.All...)
	return &WhenDateParser{parser: w}
}

// ParseAll implements DateParser
func (p *WhenDateParser) ParseAll(text string, now time.Time) ([]DateMatch, error) {
	slashes := slashDates(text, now)

	phrases, err := p.parsePhrases(text, now)
	if err != nil {
		return nil, err
	}

	matches := slashes
	for _, m := range phrases {
		if !overlapsAny(m, slashes) {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	return matches, nil
}

// parsePhrases runs when repeatedly. when reports only the first expression
// in its input, so the remainder after each match is parsed again.
func (p *WhenDateParser) parsePhrases(text string, now time.Time) ([]DateMatch, error) {
	matches := make([]DateMatch, 0)

	offset := 0
	for offset < len(text) {
		sub := text[offset:]
		m, ok, err := p.first(sub, now)
		if err != nil {
			return nil, errors.Wrapf(err, "parse dates at offset %d", offset)
		}
		if !ok {
			break
		}

		items, err := p.splitList(m, now)
		if err != nil {
			return nil, errors.Wrapf(err, "split date list at offset %d", offset)
		}
		for _, item := range items {
			item.Index += offset
			matches = append(matches, item)
		}

		next := offset + m.Index + len(m.Text)
		if next <= offset {
			next = offset + 1
		}
		offset = next
	}

	return matches, nil
}

// first returns the first expression in text with its index relative to text
func (p *WhenDateParser) first(text string, now time.Time) (DateMatch, bool, error) {
	r, err := p.parser.Parse(text, now)
	if err != nil || r == nil {
		return DateMatch{}, false, err
	}

	// rule boundaries may include surrounding punctuation or spaces
	matched := strings.TrimFunc(r.Text, notWordRune)
	if matched == "" {
		return DateMatch{}, false, nil
	}
	pos := -1
	if r.Index >= 0 && r.Index <= len(text) {
		if i := strings.Index(text[r.Index:], matched); i >= 0 {
			pos = r.Index + i
		}
	}
	if pos < 0 {
		pos = strings.Index(text, matched)
	}
	if pos < 0 {
		return DateMatch{}, false, nil
	}
	return DateMatch{Index: pos, Text: matched, Time: r.Time}, true, nil
}

// splitList breaks an expression that when merged across list separators,
// like "Tomorrow, Friday", into one match per item. The expression stays
// whole unless every item parses as a date by itself, so "Jan 15, 2025" is
// kept intact.
func (p *WhenDateParser) splitList(m DateMatch, now time.Time) ([]DateMatch, error) {
	seps := listSeparator.FindAllStringIndex(m.Text, -1)
	if len(seps) == 0 {
		return []DateMatch{m}, nil
	}
	seps = append(seps, []int{len(m.Text), len(m.Text)})

	items := make([]DateMatch, 0, len(seps))
	prev := 0
	for _, sep := range seps {
		part, partStart := m.Text[prev:sep[0]], prev
		prev = sep[1]
		if strings.TrimFunc(part, notWordRune) == "" {
			continue
		}

		item, ok, err := p.first(part, now)
		if err != nil {
			return nil, err
		}
		if !ok || !containsLetter(part) {
			return []DateMatch{m}, nil
		}
		item.Index += m.Index + partStart
		items = append(items, item)
	}

	if len(items) < 2 {
		return []DateMatch{m}, nil
	}
	return items, nil
}

// slashDates finds month-first numeric dates. A missing year is the year of
// now and the time of day is taken from now.
func slashDates(text string, now time.Time) []DateMatch {
	matches := make([]DateMatch, 0)
	for _, loc := range slashDatePattern.FindAllStringSubmatchIndex(text, -1) {
		month, _ := strconv.Atoi(text[loc[2]:loc[3]])
		day, _ := strconv.Atoi(text[loc[4]:loc[5]])
		year := now.Year()
		if loc[6] >= 0 {
			year, _ = strconv.Atoi(text[loc[6]:loc[7]])
			if year < 100 {
				year += 2000
			}
		}

		t := time.Date(year, time.Month(month), day, now.Hour(), now.Minute(), now.Second(), 0, now.Location())
		if t.Day() != day {
			// 2/30 and similar roll over into the next month
			continue
		}
		matches = append(matches, DateMatch{
			Index: loc[0],
			Text:  text[loc[0]:loc[1]],
			Time:  t,
		})
	}
	return matches
}

func overlapsAny(m DateMatch, others []DateMatch) bool {
	end := m.Index + len(m.Text)
	for _, o := range others {
		if m.Index < o.Index+len(o.Text) && o.Index < end {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
