package entity

import (
	"fmt"
	"time"
)

// ISOLayout is the layout of every date entity's NormalizedValue. Values are
// always rendered in UTC.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// LocalDateLayout renders dates in actionable items.
const LocalDateLayout = "1/2/2006"

// FormatISO renders t as a date entity's normalized value.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// CategoryCounts holds the number of entities per category
type CategoryCounts struct {
	People              int `json:"people"`
	Companies           int `json:"companies"`
	Dates               int `json:"dates"`
	FutureDates         int `json:"futureDates"`
	Locations           int `json:"locations"`
	Commitments         int `json:"commitments"`
	RelationshipSignals int `json:"relationshipSignals"`
	Contacts            int `json:"contacts"`
	Phones              int `json:"phones"`
	Emails              int `json:"emails"`
	Other               int `json:"other"`
}

// Summary is a human-readable digest of a structured entity set
type Summary struct {
	Counts     CategoryCounts `json:"counts"`
	Highlights []string       `json:"highlights"`
}

// Summarize counts each category and builds highlight lines for the
// non-empty ones.
func Summarize(s StructuredEntities) Summary {
	counts := CategoryCounts{
		People:              len(s.People),
		Companies:           len(s.Companies),
		Dates:               len(s.Dates),
		Locations:           len(s.Locations),
		Commitments:         len(s.Commitments),
		RelationshipSignals: len(s.RelationshipSignals),
		Contacts:            len(s.Contacts),
		Other:               len(s.Other),
	}
	for _, d := range s.Dates {
		if meta := d.Date(); meta != nil && meta.IsFuture {
			counts.FutureDates++
		}
	}
	for _, c := range s.Contacts {
		switch c.Type {
		case TypePhone:
			counts.Phones++
		case TypeEmail:
			counts.Emails++
		}
	}

	highlights := make([]string, 0, 4)
	if counts.Commitments > 0 {
		highlights = append(highlights, plural(counts.Commitments, "commitment", "commitments")+" made")
	}
	if counts.FutureDates > 0 {
		highlights = append(highlights, plural(counts.FutureDates, "upcoming date", "upcoming dates"))
	}
	if counts.People > 0 {
		highlights = append(highlights, plural(counts.People, "person", "people")+" mentioned")
	}
	if counts.RelationshipSignals > 0 {
		highlights = append(highlights, "Relationship context detected")
	}

	return Summary{Counts: counts, Highlights: highlights}
}

// ActionableItems lists follow-ups: linked commitments, then unlinked outbound
// commitments, in stored order, followed by future-dated events.
func ActionableItems(s StructuredEntities) []string {
	items := make([]string, 0)

	for _, c := range s.Commitments {
		meta := c.Commitment()
		if meta == nil {
			continue
		}
		switch {
		case meta.LinkedDate != "":
			verb := meta.ActionVerb
			if verb == "" {
				verb = "follow up"
			}
			items = append(items, fmt.Sprintf("%s by %s", verb, localDate(meta.LinkedDate)))
		case meta.Direction == DirectionOutbound:
			items = append(items, c.Value)
		}
	}

	for _, d := range s.Dates {
		if meta := d.Date(); meta != nil && meta.IsFuture {
			items = append(items, "Event on "+localDate(d.NormalizedValue))
		}
	}

	return items
}

func localDate(iso string) string {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return iso
	}
	return t.In(time.Local).Format(LocalDateLayout)
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
