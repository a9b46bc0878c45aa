package entity

import (
	"encoding/json"
	"fmt"
)

// EntityType identifies the category of an extracted fact
type EntityType string

const (
	TypePerson             EntityType = "person"
	TypeCompany            EntityType = "company"
	TypeDate               EntityType = "date"
	TypeLocation           EntityType = "location"
	TypeCommitment         EntityType = "commitment"
	TypeRelationshipSignal EntityType = "relationship_signal"
	TypePhone              EntityType = "phone"
	TypeEmail              EntityType = "email"
	TypeURL                EntityType = "url"
	TypeOther              EntityType = "other"
)

// Confidence is the qualitative certainty attached to an entity
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Source records which pass produced an entity
type Source string

const (
	SourceDeterministic Source = "deterministic"
	SourceAI            Source = "ai"
	SourceHybrid        Source = "hybrid"
)

// Direction of a commitment
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
	DirectionMutual   Direction = "mutual"
)

// SignalType is the keyword category a relationship signal matched
type SignalType string

const (
	SignalProfessional  SignalType = "professional"
	SignalPersonal      SignalType = "personal"
	SignalTransactional SignalType = "transactional"
	SignalHierarchical  SignalType = "hierarchical"
	SignalTemporal      SignalType = "temporal"
)

// Metadata is the category-specific payload of a ParsedEntity. The concrete
// type is always determined by the entity's Type.
type Metadata interface {
	EntityType() EntityType
}

type PersonMetadata struct {
	FullName string `json:"fullName"`
	// ContactID links to a known contact; the entity never owns it.
	ContactID string `json:"contactId,omitempty"`
}

type CompanyMetadata struct {
	Name string `json:"name"`
}

type LocationMetadata struct {
	Name string `json:"name"`
}

type DateMetadata struct {
	IsRelative  bool `json:"isRelative"`
	IsFuture    bool `json:"isFuture"`
	DaysFromNow int  `json:"daysFromNow"`
}

type CommitmentMetadata struct {
	Direction  Direction `json:"direction"`
	ActionVerb string    `json:"actionVerb,omitempty"`
	LinkedDate string    `json:"linkedDate,omitempty"`
}

type RelationshipSignalMetadata struct {
	SignalType       SignalType `json:"signalType"`
	RelationshipRole string     `json:"relationshipRole"`
}

// ContactMetadata is shared by phone and email entities.
type ContactMetadata struct {
	Kind      EntityType `json:"kind"`
	IsValid   bool       `json:"isValid"`
	Formatted string     `json:"formatted"`
}

func (*PersonMetadata) EntityType() EntityType             { return TypePerson }
func (*CompanyMetadata) EntityType() EntityType            { return TypeCompany }
func (*LocationMetadata) EntityType() EntityType           { return TypeLocation }
func (*DateMetadata) EntityType() EntityType               { return TypeDate }
func (*CommitmentMetadata) EntityType() EntityType         { return TypeCommitment }
func (*RelationshipSignalMetadata) EntityType() EntityType { return TypeRelationshipSignal }
func (m *ContactMetadata) EntityType() EntityType          { return m.Kind }

// ParsedEntity is a single typed fact extracted from text
type ParsedEntity struct {
	Type            EntityType `json:"type"`
	Value           string     `json:"value"`
	NormalizedValue string     `json:"normalizedValue"`
	Confidence      Confidence `json:"confidence"`
	Source          Source     `json:"source"`
	StartIndex      *int       `json:"startIndex,omitempty"`
	EndIndex        *int       `json:"endIndex,omitempty"`
	Metadata        Metadata   `json:"metadata,omitempty"`
}

// Span returns the start/end offsets, or false when the entity is not
// positionally anchored.
func (e ParsedEntity) Span() (int, int, bool) {
	if e.StartIndex == nil || e.EndIndex == nil {
		return 0, 0, false
	}
	return *e.StartIndex, *e.EndIndex, true
}

// Anchor sets the entity offsets to [start, end).
func (e *ParsedEntity) Anchor(start, end int) {
	e.StartIndex = &start
	e.EndIndex = &end
}

// Commitment returns the commitment metadata, or nil for other types
func (e ParsedEntity) Commitment() *CommitmentMetadata {
	m, _ := e.Metadata.(*CommitmentMetadata)
	return m
}

// Date returns the date metadata, or nil for other types
func (e ParsedEntity) Date() *DateMetadata {
	m, _ := e.Metadata.(*DateMetadata)
	return m
}

// Signal returns the relationship signal metadata, or nil for other types
func (e ParsedEntity) Signal() *RelationshipSignalMetadata {
	m, _ := e.Metadata.(*RelationshipSignalMetadata)
	return m
}

// Contact returns the phone/email metadata, or nil for other types
func (e ParsedEntity) Contact() *ContactMetadata {
	m, _ := e.Metadata.(*ContactMetadata)
	return m
}

type parsedEntityJSON struct {
	Type            EntityType      `json:"type"`
	Value           string          `json:"value"`
	NormalizedValue string          `json:"normalizedValue"`
	Confidence      Confidence      `json:"confidence"`
	Source          Source          `json:"source"`
	StartIndex      *int            `json:"startIndex,omitempty"`
	EndIndex        *int            `json:"endIndex,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the metadata variant selected by the entity type.
func (e *ParsedEntity) UnmarshalJSON(data []byte) error {
	var raw parsedEntityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = ParsedEntity{
		Type:            raw.Type,
		Value:           raw.Value,
		NormalizedValue: raw.NormalizedValue,
		Confidence:      raw.Confidence,
		Source:          raw.Source,
		StartIndex:      raw.StartIndex,
		EndIndex:        raw.EndIndex,
	}

	if len(raw.Metadata) == 0 || string(raw.Metadata) == "null" {
		return nil
	}

	var meta Metadata
	switch raw.Type {
	case TypePerson:
		meta = &PersonMetadata{}
	case TypeCompany:
		meta = &CompanyMetadata{}
	case TypeLocation:
		meta = &LocationMetadata{}
	case TypeDate:
		meta = &DateMetadata{}
	case TypeCommitment:
		meta = &CommitmentMetadata{}
	case TypeRelationshipSignal:
		meta = &RelationshipSignalMetadata{}
	case TypePhone, TypeEmail:
		meta = &ContactMetadata{}
	default:
		return fmt.Errorf("metadata not supported for entity type %q", raw.Type)
	}

	if err := json.Unmarshal(raw.Metadata, meta); err != nil {
		return fmt.Errorf("decode %s metadata: %w", raw.Type, err)
	}
	e.Metadata = meta
	return nil
}

// StructuredEntities groups entities by category in extraction order
type StructuredEntities struct {
	People              []ParsedEntity `json:"people"`
	Companies           []ParsedEntity `json:"companies"`
	Dates               []ParsedEntity `json:"dates"`
	Locations           []ParsedEntity `json:"locations"`
	Commitments         []ParsedEntity `json:"commitments"`
	RelationshipSignals []ParsedEntity `json:"relationshipSignals"`
	Contacts            []ParsedEntity `json:"contacts"`
	// Other holds AI-only survivors of a hybrid merge.
	Other []ParsedEntity `json:"other"`
}

// NewStructuredEntities returns a value with every category empty but non-nil.
func NewStructuredEntities() StructuredEntities {
	return StructuredEntities{
		People:              []ParsedEntity{},
		Companies:           []ParsedEntity{},
		Dates:               []ParsedEntity{},
		Locations:           []ParsedEntity{},
		Commitments:         []ParsedEntity{},
		RelationshipSignals: []ParsedEntity{},
		Contacts:            []ParsedEntity{},
		Other:               []ParsedEntity{},
	}
}

// Deterministic flattens every rule-derived category in canonical order.
func (s StructuredEntities) Deterministic() []ParsedEntity {
	all := make([]ParsedEntity, 0,
		len(s.People)+len(s.Companies)+len(s.Dates)+len(s.Locations)+
			len(s.Commitments)+len(s.RelationshipSignals)+len(s.Contacts))
	all = append(all, s.People...)
	all = append(all, s.Companies...)
	all = append(all, s.Dates...)
	all = append(all, s.Locations...)
	all = append(all, s.Commitments...)
	all = append(all, s.RelationshipSignals...)
	all = append(all, s.Contacts...)
	return all
}

// ResultMetadata carries aggregate counts and timing
type ResultMetadata struct {
	// ProcessingTime is wall-clock milliseconds.
	ProcessingTime     int64 `json:"processingTime"`
	DeterministicCount int   `json:"deterministicCount"`
	AICount            int   `json:"aiCount"`
	TotalCount         int   `json:"totalCount"`
}

// Result is the output of one extraction call
type Result struct {
	Raw         string             `json:"raw"`
	Structured  StructuredEntities `json:"structured"`
	AllEntities []ParsedEntity     `json:"allEntities"`
	Metadata    ResultMetadata     `json:"metadata"`
}
