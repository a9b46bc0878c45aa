package storage

import (
	"context"
	"fmt"

	"github.com/athapong/notegraph/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	mergeNodeQuery = `
		MERGE (n:NoteEntity {id: $id})
		SET n.label = $label,
			n.type = $type,
			n.sources = $sources,
			n.mentions = $mentions,
			n.updated_at = datetime()
	`

	mergeEdgeQuery = `
		MATCH (from:NoteEntity {id: $source})
		MATCH (to:NoteEntity {id: $target})
		MERGE (from)-[r:RELATES {id: $id}]->(to)
		SET r.type = $type,
			r.weight = $weight,
			r.updated_at = datetime()
	`

	loadNodesQuery = `
		MATCH (n:NoteEntity)
		RETURN n.id AS id, n.label AS label, n.type AS type, n.sources AS sources, n.mentions AS mentions
		ORDER BY id
	`

	loadEdgesQuery = `
		MATCH (from:NoteEntity)-[r:RELATES]->(to:NoteEntity)
		RETURN r.id AS id, from.id AS source, to.id AS target, r.type AS type, r.weight AS weight
		ORDER BY id
	`
)

// Neo4jStore implements GraphStore on a Neo4j database. Writes use MERGE so
// storing the same graph twice is idempotent.
type Neo4jStore struct {
	driver neo4j.Driver
	logger *logrus.Logger
}

// NewNeo4jStore creates a store connected to uri
func NewNeo4jStore(uri, username, password string) (*Neo4jStore, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Neo4jStore{
		driver: driver,
		logger: logger,
	}, nil
}

// Verify checks the database is reachable
func (s *Neo4jStore) Verify(ctx context.Context) error {
	return errors.Wrap(s.driver.VerifyConnectivity(), "verify Neo4j connectivity")
}

// Close releases the driver
func (s *Neo4jStore) Close() error {
	if s.driver != nil {
		return s.driver.Close()
	}
	return nil
}

// StoreGraph merges every node and edge in a single write transaction
func (s *Neo4jStore) StoreGraph(ctx context.Context, data *graph.KnowledgeGraphData) error {
	if data == nil {
		return errors.New("cannot store nil graph")
	}

	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		for _, node := range data.Nodes {
			if _, err := tx.Run(mergeNodeQuery, nodeParams(node)); err != nil {
				return nil, errors.Wrapf(err, "merge node %s", node.ID)
			}
		}
		for _, edge := range data.Edges {
			if _, err := tx.Run(mergeEdgeQuery, edgeParams(edge)); err != nil {
				return nil, errors.Wrapf(err, "merge edge %s", edge.ID)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"nodes": len(data.Nodes),
		"edges": len(data.Edges),
	}).Info("Stored relationship graph in Neo4j")
	return nil
}

// LoadGraph reads every stored node and edge
func (s *Neo4jStore) LoadGraph(ctx context.Context) (*graph.KnowledgeGraphData, error) {
	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	out, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		data := &graph.KnowledgeGraphData{
			Nodes: make([]graph.Node, 0),
			Edges: make([]graph.Edge, 0),
		}

		result, err := tx.Run(loadNodesQuery, nil)
		if err != nil {
			return nil, err
		}
		for result.Next() {
			data.Nodes = append(data.Nodes, nodeFromRecord(recordMap(result.Record())))
		}
		if err := result.Err(); err != nil {
			return nil, err
		}

		result, err = tx.Run(loadEdgesQuery, nil)
		if err != nil {
			return nil, err
		}
		for result.Next() {
			data.Edges = append(data.Edges, edgeFromRecord(recordMap(result.Record())))
		}
		return data, result.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "load graph from Neo4j")
	}
	return out.(*graph.KnowledgeGraphData), nil
}

func recordMap(record *neo4j.Record) map[string]interface{} {
	data := make(map[string]interface{}, len(record.Keys))
	for i, key := range record.Keys {
		data[key] = record.Values[i]
	}
	return data
}

func nodeParams(n graph.Node) map[string]interface{} {
	mentions := int64(0)
	if m, ok := n.Properties["mentions"].(int); ok {
		mentions = int64(m)
	}
	sources := make([]interface{}, len(n.Sources))
	for i, src := range n.Sources {
		sources[i] = src
	}
	return map[string]interface{}{
		"id":       n.ID,
		"label":    n.Label,
		"type":     n.Type,
		"sources":  sources,
		"mentions": mentions,
	}
}

func edgeParams(e graph.Edge) map[string]interface{} {
	return map[string]interface{}{
		"id":     e.ID,
		"source": e.Source,
		"target": e.Target,
		"type":   e.Type,
		"weight": e.Weight,
	}
}

func nodeFromRecord(r map[string]interface{}) graph.Node {
	node := graph.Node{
		ID:         stringValue(r["id"]),
		Label:      stringValue(r["label"]),
		Type:       stringValue(r["type"]),
		Properties: map[string]interface{}{},
	}
	if m, ok := r["mentions"].(int64); ok {
		node.Properties["mentions"] = int(m)
	}
	if list, ok := r["sources"].([]interface{}); ok {
		for _, v := range list {
			node.Sources = append(node.Sources, stringValue(v))
		}
	}
	return node
}

func edgeFromRecord(r map[string]interface{}) graph.Edge {
	weight, _ := r["weight"].(float64)
	return graph.Edge{
		ID:     stringValue(r["id"]),
		Source: stringValue(r["source"]),
		Target: stringValue(r["target"]),
		Type:   stringValue(r["type"]),
		Weight: weight,
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
