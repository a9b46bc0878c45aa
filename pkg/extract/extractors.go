package extract

import (
	"math"
	"strings"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
)

func newEntity(t entity.EntityType, value, normalized string, confidence entity.Confidence, meta entity.Metadata) entity.ParsedEntity {
	return entity.ParsedEntity{
		Type:            t,
		Value:           value,
		NormalizedValue: normalized,
		Confidence:      confidence,
		Source:          entity.SourceDeterministic,
		Metadata:        meta,
	}
}

// namedEntities turns the tagger spans carrying label into entities, locating
// each span in the text left to right.
func namedEntities(text string, spans []Span, label SpanLabel) []entity.ParsedEntity {
	entities := make([]entity.ParsedEntity, 0)
	cursor := 0

	for _, span := range spans {
		if span.Label != label || strings.TrimSpace(span.Text) == "" {
			continue
		}

		name := strings.TrimSpace(span.Text)
		var e entity.ParsedEntity
		switch label {
		case LabelPerson:
			e = newEntity(entity.TypePerson, span.Text, name, entity.ConfidenceHigh,
				&entity.PersonMetadata{FullName: name})
		case LabelOrganization:
			e = newEntity(entity.TypeCompany, span.Text, name, entity.ConfidenceMedium,
				&entity.CompanyMetadata{Name: name})
		case LabelPlace:
			e = newEntity(entity.TypeLocation, span.Text, name, entity.ConfidenceMedium,
				&entity.LocationMetadata{Name: name})
		}

		if idx := strings.Index(text[cursor:], span.Text); idx >= 0 {
			start := cursor + idx
			e.Anchor(start, start+len(span.Text))
			cursor = start + len(span.Text)
		} else if idx := strings.Index(text, span.Text); idx >= 0 {
			e.Anchor(idx, idx+len(span.Text))
		}

		entities = append(entities, e)
	}

	return entities
}

func extractDates(text string, parser DateParser, now time.Time) ([]entity.ParsedEntity, error) {
	matches, err := parser.ParseAll(text, now)
	if err != nil {
		return nil, err
	}

	dates := make([]entity.ParsedEntity, 0, len(matches))
	for _, m := range matches {
		days := int(math.Ceil(m.Time.Sub(now).Hours() / 24))
		e := newEntity(entity.TypeDate, m.Text, entity.FormatISO(m.Time), entity.ConfidenceHigh,
			&entity.DateMetadata{
				IsRelative:  !yearPattern.MatchString(m.Text),
				IsFuture:    m.Time.After(now),
				DaysFromNow: days,
			})
		e.Anchor(m.Index, m.Index+len(m.Text))
		dates = append(dates, e)
	}

	return dates, nil
}

func extractCommitments(text string) []entity.ParsedEntity {
	commitments := make([]entity.ParsedEntity, 0)

	for _, tmpl := range commitmentTemplates {
		for _, loc := range tmpl.regex.FindAllStringSubmatchIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			verb := strings.ToLower(text[loc[4]:loc[5]])

			meta := &entity.CommitmentMetadata{Direction: tmpl.direction}
			confidence := entity.ConfidenceMedium
			if actionVerbs.Contains(verb) {
				meta.ActionVerb = verb
				confidence = entity.ConfidenceHigh
			}

			e := newEntity(entity.TypeCommitment, value, strings.ToLower(value), confidence, meta)
			e.Anchor(loc[0], loc[1])
			commitments = append(commitments, e)
		}
	}

	return commitments
}

func extractRelationshipSignals(text string) []entity.ParsedEntity {
	signals := make([]entity.ParsedEntity, 0)

	for _, category := range signalCategories {
		for _, pattern := range category.patterns {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				value := text[loc[0]:loc[1]]
				e := newEntity(entity.TypeRelationshipSignal, value, strings.ToLower(value), entity.ConfidenceHigh,
					&entity.RelationshipSignalMetadata{
						SignalType:       category.signalType,
						RelationshipRole: value,
					})
				e.Anchor(loc[0], loc[1])
				signals = append(signals, e)
			}
		}
	}

	return signals
}

func extractPhones(text string) []entity.ParsedEntity {
	phones := make([]entity.ParsedEntity, 0)
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		e := newEntity(entity.TypePhone, value, nonDigitRune.ReplaceAllString(value, ""), entity.ConfidenceHigh,
			&entity.ContactMetadata{Kind: entity.TypePhone, IsValid: true, Formatted: value})
		e.Anchor(loc[0], loc[1])
		phones = append(phones, e)
	}
	return phones
}

func extractEmails(text string) []entity.ParsedEntity {
	emails := make([]entity.ParsedEntity, 0)
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		e := newEntity(entity.TypeEmail, value, strings.ToLower(value), entity.ConfidenceHigh,
			&entity.ContactMetadata{Kind: entity.TypeEmail, IsValid: true, Formatted: value})
		e.Anchor(loc[0], loc[1])
		emails = append(emails, e)
	}
	return emails
}
