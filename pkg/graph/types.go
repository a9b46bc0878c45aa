package graph

import (
	"context"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
)

// Default content type for notes without one
const ContentTypeText = "text/plain"

// Note is a single source note moving through the pipeline
type Note struct {
	ID          string         `json:"id"`
	Path        string         `json:"path,omitempty"`
	ContentType string         `json:"content_type"`
	Content     []byte         `json:"-"`
	Text        string         `json:"text"`
	Result      *entity.Result `json:"result,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// NoteProcessor converts raw note bytes of a given content type to plain text
type NoteProcessor interface {
	Process(ctx context.Context, content []byte) (string, error)
	SupportedTypes() []string
}

// Extractor is the extraction engine the pipeline drives
type Extractor interface {
	Extract(text string) (*entity.Result, error)
	ExtractHybrid(text string, aiEntities []string) (*entity.Result, error)
}

// Suggester proposes free-text entity strings for a note
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Node types in the relationship graph
const (
	NodePerson     = "person"
	NodeCompany    = "company"
	NodeLocation   = "location"
	NodeDate       = "date"
	NodeCommitment = "commitment"
)

// Edge types in the relationship graph
const (
	EdgeCoMentioned = "CO_MENTIONED"
	EdgeCommittedTo = "COMMITTED_TO"
	EdgeDueOn       = "DUE_ON"
)

// Node represents a node in the relationship graph
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Sources    []string               `json:"sources,omitempty"` // note IDs mentioning this node
}

// Edge represents a relationship between nodes
type Edge struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Target     string                 `json:"target"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Weight     float64                `json:"weight"`
}

// KnowledgeGraphData is a generated relationship graph
type KnowledgeGraphData struct {
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	GeneratedAt time.Time `json:"generated_at"`
}
