package storage

import (
	"context"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/graph"
)

// Report is the persisted outcome of extracting one note
type Report struct {
	ID              string                    `json:"id"`
	File            string                    `json:"file,omitempty"`
	Entities        entity.StructuredEntities `json:"entities"`
	Summary         entity.Summary            `json:"summary"`
	ActionableItems []string                  `json:"actionableItems"`
	ProcessingTime  int64                     `json:"processingTime"`
	ProcessedAt     time.Time                 `json:"processedAt"`
}

// NewReport builds a report from an extracted note. Notes without a result
// yield nil.
func NewReport(note *graph.Note) *Report {
	if note == nil || note.Result == nil {
		return nil
	}
	structured := note.Result.Structured
	return &Report{
		ID:              note.ID,
		File:            note.Path,
		Entities:        structured,
		Summary:         entity.Summarize(structured),
		ActionableItems: entity.ActionableItems(structured),
		ProcessingTime:  note.Result.Metadata.ProcessingTime,
		ProcessedAt:     note.ProcessedAt,
	}
}

// JSONReportStore writes extraction reports to a JSON file
type JSONReportStore struct {
	filePath string
}

// NewJSONReportStore creates a report store backed by filePath
func NewJSONReportStore(filePath string) *JSONReportStore {
	return &JSONReportStore{filePath: filePath}
}

// StoreReports replaces the file contents with reports
func (s *JSONReportStore) StoreReports(ctx context.Context, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	return writeJSON(s.filePath, reports)
}

// LoadReports reads the reports back
func (s *JSONReportStore) LoadReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if err := readJSON(s.filePath, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
