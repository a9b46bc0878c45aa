package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/athapong/notegraph/pkg/graph"
	"github.com/pkg/errors"
)

// GraphStore defines an interface for storing relationship graphs
type GraphStore interface {
	// StoreGraph persists a relationship graph
	StoreGraph(ctx context.Context, graph *graph.KnowledgeGraphData) error

	// LoadGraph loads a relationship graph from storage
	LoadGraph(ctx context.Context) (*graph.KnowledgeGraphData, error)
}

// JSONGraphStore implements GraphStore using a JSON file
type JSONGraphStore struct {
	filePath string
}

// NewJSONGraphStore creates a new JSON graph store
func NewJSONGraphStore(filePath string) *JSONGraphStore {
	return &JSONGraphStore{
		filePath: filePath,
	}
}

// StoreGraph stores the graph as indented JSON
func (s *JSONGraphStore) StoreGraph(ctx context.Context, data *graph.KnowledgeGraphData) error {
	if data == nil {
		return errors.New("cannot store nil graph")
	}
	return writeJSON(s.filePath, data)
}

// LoadGraph loads a graph from the JSON file
func (s *JSONGraphStore) LoadGraph(ctx context.Context) (*graph.KnowledgeGraphData, error) {
	var data graph.KnowledgeGraphData
	if err := readJSON(s.filePath, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode JSON")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode %s", path)
}
