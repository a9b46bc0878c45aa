package entity

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Serialize encodes structured entities into their transport string form.
func Serialize(structured StructuredEntities) (string, error) {
	data, err := json.Marshal(structured)
	if err != nil {
		return "", errors.Wrap(err, "serialize structured entities")
	}
	return string(data), nil
}

// Deserialize decodes a transport string produced by Serialize. It returns nil
// for anything that is not a well-formed structured entity object.
func Deserialize(data string) *StructuredEntities {
	if !gjson.Valid(data) || !gjson.Parse(data).IsObject() {
		return nil
	}

	structured := NewStructuredEntities()
	if err := json.Unmarshal([]byte(data), &structured); err != nil {
		return nil
	}
	structured.fillEmpty()
	return &structured
}

// fillEmpty replaces categories decoded from an explicit null with empty slices.
func (s *StructuredEntities) fillEmpty() {
	for _, field := range []*[]ParsedEntity{
		&s.People, &s.Companies, &s.Dates, &s.Locations,
		&s.Commitments, &s.RelationshipSignals, &s.Contacts, &s.Other,
	} {
		if *field == nil {
			*field = []ParsedEntity{}
		}
	}
}
