package extract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// phraseDates resolves a fixed set of phrases to offsets from fixedNow.
type phraseDates map[string]time.Duration

func (p phraseDates) ParseAll(text string, now time.Time) ([]DateMatch, error) {
	matches := make([]DateMatch, 0)
	lower := strings.ToLower(text)
	for phrase, offset := range p {
		from := 0
		for {
			idx := strings.Index(lower[from:], strings.ToLower(phrase))
			if idx < 0 {
				break
			}
			start := from + idx
			matches = append(matches, DateMatch{
				Index: start,
				Text:  text[start : start+len(phrase)],
				Time:  now.Add(offset),
			})
			from = start + len(phrase)
		}
	}
	sortMatches(matches)
	return matches, nil
}

func sortMatches(m []DateMatch) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && m[j].Index < m[j-1].Index; j-- {
			m[j], m[j-1] = m[j-1], m[j]
		}
	}
}

// wordTagger tags exact strings with a label.
type wordTagger map[string]SpanLabel

func (w wordTagger) Tag(text string) ([]Span, error) {
	spans := make([]Span, 0)
	for word, label := range w {
		if strings.Contains(text, word) {
			spans = append(spans, Span{Text: word, Label: label})
		}
	}
	return spans, nil
}

func newTestExtractor(tagger Tagger, dates DateParser) *Extractor {
	if tagger == nil {
		tagger = wordTagger{}
	}
	if dates == nil {
		dates = phraseDates{}
	}
	return New(WithTagger(tagger), WithDateParser(dates), WithClock(fixedClock))
}

func TestExtract_LiteralCases(t *testing.T) {
	ex := newTestExtractor(nil, phraseDates{"tomorrow": 24 * time.Hour})

	t.Run("outbound commitment", func(t *testing.T) {
		result, err := ex.Extract("I'll call you back tomorrow")
		require.NoError(t, err)
		require.NotEmpty(t, result.Structured.Commitments)

		c := result.Structured.Commitments[0]
		assert.Equal(t, "I'll call", c.Value)
		assert.Equal(t, entity.DirectionOutbound, c.Commitment().Direction)
		assert.Equal(t, "call", c.Commitment().ActionVerb)
		assert.Equal(t, entity.ConfidenceHigh, c.Confidence)
	})

	t.Run("relationship signal", func(t *testing.T) {
		result, err := ex.Extract("My boss wants to meet")
		require.NoError(t, err)
		require.Len(t, result.Structured.RelationshipSignals, 1)

		s := result.Structured.RelationshipSignals[0]
		assert.Equal(t, "boss", s.Value)
		assert.Equal(t, entity.SignalProfessional, s.Signal().SignalType)
		assert.Equal(t, "boss", s.Signal().RelationshipRole)
	})

	t.Run("phones", func(t *testing.T) {
		result, err := ex.Extract("Call me at 555-123-4567 or 555.987.6543")
		require.NoError(t, err)
		require.Len(t, result.Structured.Contacts, 2)
		for _, c := range result.Structured.Contacts {
			assert.Equal(t, entity.TypePhone, c.Type)
			assert.True(t, c.Contact().IsValid)
			assert.Equal(t, c.Value, c.Contact().Formatted)
		}
		assert.Equal(t, "5551234567", result.Structured.Contacts[0].NormalizedValue)
	})

	t.Run("emails", func(t *testing.T) {
		result, err := ex.Extract("Email John@Example.com or sarah@company.org")
		require.NoError(t, err)
		require.Len(t, result.Structured.Contacts, 2)
		for _, c := range result.Structured.Contacts {
			assert.Equal(t, entity.TypeEmail, c.Type)
		}
		assert.Equal(t, "john@example.com", result.Structured.Contacts[0].NormalizedValue)
		assert.Equal(t, "John@Example.com", result.Structured.Contacts[0].Value)
	})
}

func TestExtract_CommitmentTemplates(t *testing.T) {
	ex := newTestExtractor(nil, nil)

	tests := []struct {
		name      string
		text      string
		wantValue string
		direction entity.Direction
		verb      string
	}{
		{"inbound request", "Can you send the deck?", "Can you send", entity.DirectionInbound, "send"},
		{"mutual plan", "Let's grab coffee", "Let's grab", entity.DirectionMutual, "grab"},
		{"agreement", "She agreed to review it", "agreed to review", entity.DirectionMutual, "review"},
		{"obligation", "I must finish the report", "must finish", entity.DirectionOutbound, "finish"},
		{"unknown verb", "We will celebrate", "We will celebrate", entity.DirectionMutual, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ex.Extract(tt.text)
			require.NoError(t, err)
			require.Len(t, result.Structured.Commitments, 1)

			c := result.Structured.Commitments[0]
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, strings.ToLower(tt.wantValue), c.NormalizedValue)
			assert.Equal(t, tt.direction, c.Commitment().Direction)
			assert.Equal(t, tt.verb, c.Commitment().ActionVerb)
			if tt.verb == "" {
				assert.Equal(t, entity.ConfidenceMedium, c.Confidence)
			}
		})
	}
}

func TestExtract_OverlappingTemplatesAreAllKept(t *testing.T) {
	ex := newTestExtractor(nil, nil)

	result, err := ex.Extract("I'll need to call her")
	require.NoError(t, err)
	require.Len(t, result.Structured.Commitments, 2)

	first, second := result.Structured.Commitments[0], result.Structured.Commitments[1]
	assert.Equal(t, "I'll need", first.Value)
	assert.Empty(t, first.Commitment().ActionVerb)
	assert.Equal(t, "need to call", second.Value)
	assert.Equal(t, "call", second.Commitment().ActionVerb)
}

func TestExtract_RelationshipSignalsRepeatAndCategories(t *testing.T) {
	ex := newTestExtractor(nil, nil)

	result, err := ex.Extract("My Friend introduced her friend, a lawyer, to our CEO")
	require.NoError(t, err)

	var values []string
	types := map[string]entity.SignalType{}
	for _, s := range result.Structured.RelationshipSignals {
		values = append(values, s.Value)
		types[s.NormalizedValue] = s.Signal().SignalType
	}
	assert.Equal(t, []string{"Friend", "friend", "lawyer", "CEO"}, values)
	assert.Equal(t, entity.SignalPersonal, types["friend"])
	assert.Equal(t, entity.SignalTransactional, types["lawyer"])
	assert.Equal(t, entity.SignalHierarchical, types["ceo"])
}

func TestExtract_NamedEntities(t *testing.T) {
	tagger := wordTagger{
		"Sarah Chen": LabelPerson,
		"Acme Corp":  LabelOrganization,
		"Denver":     LabelPlace,
	}
	ex := newTestExtractor(tagger, nil)

	text := "Met Sarah Chen from Acme Corp in Denver"
	result, err := ex.Extract(text)
	require.NoError(t, err)

	require.Len(t, result.Structured.People, 1)
	person := result.Structured.People[0]
	assert.Equal(t, entity.ConfidenceHigh, person.Confidence)
	assert.Equal(t, "Sarah Chen", person.Metadata.(*entity.PersonMetadata).FullName)
	start, end, ok := person.Span()
	require.True(t, ok)
	assert.Equal(t, "Sarah Chen", text[start:end])

	require.Len(t, result.Structured.Companies, 1)
	assert.Equal(t, entity.ConfidenceMedium, result.Structured.Companies[0].Confidence)
	assert.Equal(t, "Acme Corp", result.Structured.Companies[0].Metadata.(*entity.CompanyMetadata).Name)

	require.Len(t, result.Structured.Locations, 1)
	assert.Equal(t, entity.ConfidenceMedium, result.Structured.Locations[0].Confidence)
	assert.Equal(t, "Denver", result.Structured.Locations[0].NormalizedValue)
}

func TestExtract_Dates(t *testing.T) {
	dates := phraseDates{
		"next friday":  9 * 24 * time.Hour,
		"jan 15, 2025": -(637*24*time.Hour + 12*time.Hour),
	}
	ex := newTestExtractor(nil, dates)

	result, err := ex.Extract("Signed Jan 15, 2025 and renewing next Friday")
	require.NoError(t, err)
	require.Len(t, result.Structured.Dates, 2)

	past := result.Structured.Dates[0]
	assert.Equal(t, "Jan 15, 2025", past.Value)
	assert.False(t, past.Date().IsRelative)
	assert.False(t, past.Date().IsFuture)
	assert.Equal(t, -637, past.Date().DaysFromNow)

	future := result.Structured.Dates[1]
	assert.Equal(t, "next Friday", future.Value)
	assert.True(t, future.Date().IsRelative)
	assert.True(t, future.Date().IsFuture)
	assert.Equal(t, 9, future.Date().DaysFromNow)
	assert.Equal(t, "2026-10-23T09:00:00.000Z", future.NormalizedValue)

	start, end, ok := future.Span()
	require.True(t, ok)
	assert.Equal(t, len("Signed Jan 15, 2025 and renewing "), start)
	assert.Equal(t, start+len("next Friday"), end)
}

func TestExtract_CommitmentLinkedToDeadline(t *testing.T) {
	ex := newTestExtractor(nil, phraseDates{"next friday": 9 * 24 * time.Hour})

	result, err := ex.Extract("I'll follow up with them next Friday about the contract.")
	require.NoError(t, err)

	require.NotEmpty(t, result.Structured.Commitments)
	assert.Equal(t, "2026-10-23T09:00:00.000Z", result.Structured.Commitments[0].Commitment().LinkedDate)

	require.Len(t, result.Structured.Dates, 1)
	assert.True(t, result.Structured.Dates[0].Date().IsFuture)
}

func TestExtract_RealDateParser(t *testing.T) {
	ex := New(WithTagger(wordTagger{}), WithClock(fixedClock))

	result, err := ex.Extract("I'll follow up with them next Friday about the contract.")
	require.NoError(t, err)

	require.NotEmpty(t, result.Structured.Dates)
	date := result.Structured.Dates[0]
	assert.True(t, date.Date().IsFuture)
	assert.True(t, date.Date().IsRelative)
	assert.Contains(t, strings.ToLower(date.Value), "friday")

	require.NotEmpty(t, result.Structured.Commitments)
	assert.Equal(t, date.NormalizedValue, result.Structured.Commitments[0].Commitment().LinkedDate)
}

func TestExtract_Deterministic(t *testing.T) {
	ex := newTestExtractor(wordTagger{"Sarah": LabelPerson}, phraseDates{"tomorrow": 24 * time.Hour})
	text := "Sarah said we'll meet tomorrow; email sarah@acme.io or call 555 123 4567"

	first, err := ex.Extract(text)
	require.NoError(t, err)
	second, err := ex.Extract(text)
	require.NoError(t, err)

	a, err := entity.Serialize(first.Structured)
	require.NoError(t, err)
	b, err := entity.Serialize(second.Structured)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtract_EmptyInput(t *testing.T) {
	ex := New(WithClock(fixedClock))

	result, err := ex.Extract("")
	require.NoError(t, err)

	assert.Equal(t, entity.NewStructuredEntities(), result.Structured)
	assert.Empty(t, result.AllEntities)
	assert.Equal(t, 0, result.Metadata.TotalCount)
	assert.Equal(t, 0, result.Metadata.DeterministicCount)
	assert.Equal(t, 0, result.Metadata.AICount)
}

func TestExtract_CountsMatchEntities(t *testing.T) {
	ex := newTestExtractor(wordTagger{"Acme Corp": LabelOrganization}, phraseDates{"monday": 5 * 24 * time.Hour})

	result, err := ex.Extract("Acme Corp client: I'll send the contract Monday, 555-000-1111")
	require.NoError(t, err)

	assert.Equal(t, len(result.AllEntities), result.Metadata.DeterministicCount)
	assert.Equal(t, result.Metadata.DeterministicCount+result.Metadata.AICount, result.Metadata.TotalCount)
	assert.Equal(t, result.Structured.Deterministic(), result.AllEntities)
	for _, e := range result.AllEntities {
		assert.Equal(t, entity.SourceDeterministic, e.Source)
	}
}

func TestExtract_CapabilityErrorsPropagate(t *testing.T) {
	boom := errors.New("model unavailable")

	t.Run("tagger", func(t *testing.T) {
		ex := newTestExtractor(TaggerFunc(func(string) ([]Span, error) { return nil, boom }), nil)
		result, err := ex.Extract("I'll call Sam")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("dates", func(t *testing.T) {
		ex := newTestExtractor(nil, failingDates{boom})
		result, err := ex.ExtractHybrid("I'll call Sam", []string{"Sam"})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, boom)
	})
}

type failingDates struct{ err error }

func (f failingDates) ParseAll(string, time.Time) ([]DateMatch, error) { return nil, f.err }

func TestExtract_SerializeRoundTrip(t *testing.T) {
	ex := New(WithClock(fixedClock))
	text := "Met Sarah Johnson from Initech LLC in Chicago. I'll send the proposal tomorrow, " +
		"can you review it by next Monday? My manager agreed to call 312-555-0199 or sarah@initech.com."

	result, err := ex.Extract(text)
	require.NoError(t, err)

	data, err := entity.Serialize(result.Structured)
	require.NoError(t, err)

	decoded := entity.Deserialize(data)
	require.NotNil(t, decoded)
	assert.Equal(t, result.Structured, *decoded)
}

func TestPackageLevelExtract(t *testing.T) {
	result, err := Extract("Email sarah@company.org")
	require.NoError(t, err)
	require.Len(t, result.Structured.Contacts, 1)

	hybrid, err := ExtractHybrid("Email sarah@company.org", []string{"SARAH@COMPANY.ORG", "quarterly review"})
	require.NoError(t, err)
	require.Len(t, hybrid.Structured.Other, 1)
	assert.Equal(t, "quarterly review", hybrid.Structured.Other[0].Value)
}
