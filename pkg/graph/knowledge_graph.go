package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/graph/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// nodeNamespace seeds deterministic node IDs so the same person or company
// keeps its ID across runs.
var nodeNamespace = uuid.MustParse("6f1c7f4e-2b0a-4d8e-9a57-3c2f1d5b8e90")

// NodeID returns the stable ID of a node of the given type and key
func NodeID(nodeType, key string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(nodeType+":"+key)).String()
}

// GraphGenerator folds extraction results of many notes into a relationship graph
type GraphGenerator struct {
	nodes   map[string]Node // node ID to node
	edges   map[string]Edge // edge ID to edge
	noteMap map[string]bool // processed note IDs
	mutex   sync.RWMutex
	logger  *logrus.Logger
}

// NewGraphGenerator creates an empty generator
func NewGraphGenerator() *GraphGenerator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &GraphGenerator{
		nodes:   make(map[string]Node),
		edges:   make(map[string]Edge),
		noteMap: make(map[string]bool),
		logger:  logger,
	}
}

// AddNote adds the entities of an extracted note. Notes already added are skipped.
func (g *GraphGenerator) AddNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("cannot add nil note to graph")
	}
	if note.Result == nil {
		return fmt.Errorf("note %s has no extraction result", note.ID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.noteMap[note.ID] {
		return nil
	}
	g.noteMap[note.ID] = true

	s := note.Result.Structured

	people := g.addNamed(note.ID, NodePerson, s.People)
	companies := g.addNamed(note.ID, NodeCompany, s.Companies)
	g.addNamed(note.ID, NodeLocation, s.Locations)

	dateNodes := make(map[string]string, len(s.Dates))
	for _, d := range s.Dates {
		dateNodes[d.NormalizedValue] = g.upsertNode(note.ID, NodeDate, d.NormalizedValue, d.Value)
	}

	for i, p := range people {
		for _, c := range companies {
			g.upsertEdge(p, c, EdgeCoMentioned, true)
		}
		for _, other := range people[i+1:] {
			g.upsertEdge(p, other, EdgeCoMentioned, true)
		}
	}

	for i, c := range s.Commitments {
		key := fmt.Sprintf("%s#%d", note.ID, i)
		commitmentID := g.upsertNode(note.ID, NodeCommitment, key, c.Value)

		meta := c.Commitment()
		node := g.nodes[commitmentID]
		if meta != nil {
			node.Properties["direction"] = string(meta.Direction)
			if meta.ActionVerb != "" {
				node.Properties["action_verb"] = meta.ActionVerb
			}
		}
		g.nodes[commitmentID] = node

		for _, p := range people {
			g.upsertEdge(commitmentID, p, EdgeCommittedTo, false)
		}

		if meta != nil && meta.LinkedDate != "" {
			dateID, ok := dateNodes[meta.LinkedDate]
			if !ok {
				dateID = g.upsertNode(note.ID, NodeDate, meta.LinkedDate, meta.LinkedDate)
			}
			g.upsertEdge(commitmentID, dateID, EdgeDueOn, false)
		}
	}

	g.logger.WithFields(logrus.Fields{
		"note_id": note.ID,
		"nodes":   len(g.nodes),
		"edges":   len(g.edges),
	}).Debug("Added note to graph")
	return nil
}

// addNamed adds people, companies or locations and returns their unique node IDs
// in mention order.
func (g *GraphGenerator) addNamed(noteID, nodeType string, entities []entity.ParsedEntity) []string {
	ids := make([]string, 0, len(entities))
	seen := make(map[string]bool, len(entities))
	for _, e := range entities {
		label := strings.TrimSpace(e.Value)
		if label == "" {
			continue
		}
		id := g.upsertNode(noteID, nodeType, strings.ToLower(label), label)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *GraphGenerator) upsertNode(noteID, nodeType, key, label string) string {
	id := NodeID(nodeType, key)

	node, exists := g.nodes[id]
	if !exists {
		node = Node{
			ID:         id,
			Label:      label,
			Type:       nodeType,
			Properties: map[string]interface{}{"mentions": 0},
		}
	}

	node.Properties["mentions"] = node.Properties["mentions"].(int) + 1
	if len(node.Sources) == 0 || node.Sources[len(node.Sources)-1] != noteID {
		node.Sources = append(node.Sources, noteID)
	}
	g.nodes[id] = node
	return id
}

// upsertEdge adds an edge or bumps its weight. Undirected edges are stored
// with their endpoints in ID order.
func (g *GraphGenerator) upsertEdge(source, target, edgeType string, undirected bool) {
	if source == target {
		return
	}
	if undirected && target < source {
		source, target = target, source
	}

	edgeID := fmt.Sprintf("%s-%s-%s", source, edgeType, target)
	edge, exists := g.edges[edgeID]
	if !exists {
		edge = Edge{
			ID:     edgeID,
			Source: source,
			Target: target,
			Type:   edgeType,
		}
	}
	edge.Weight++
	g.edges[edgeID] = edge
}

// Generate builds the graph. Nodes and edges are sorted by ID.
func (g *GraphGenerator) Generate() *KnowledgeGraphData {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	nodes := make([]Node, 0, len(g.nodes))
	nodeTypes := make(map[string]int)
	for _, node := range g.nodes {
		nodes = append(nodes, copyNode(node))
		nodeTypes[node.Type]++
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]Edge, 0, len(g.edges))
	edgeTypes := make(map[string]int)
	for _, edge := range g.edges {
		edges = append(edges, edge)
		edgeTypes[edge.Type]++
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, t := range []string{NodePerson, NodeCompany, NodeLocation, NodeDate, NodeCommitment} {
		metrics.GraphNodeCount.WithLabelValues(t).Set(float64(nodeTypes[t]))
	}
	for _, t := range []string{EdgeCoMentioned, EdgeCommittedTo, EdgeDueOn} {
		metrics.GraphEdgeCount.WithLabelValues(t).Set(float64(edgeTypes[t]))
	}

	return &KnowledgeGraphData{
		Nodes:       nodes,
		Edges:       edges,
		GeneratedAt: time.Now(),
	}
}

func copyNode(n Node) Node {
	props := make(map[string]interface{}, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	n.Properties = props
	n.Sources = append([]string(nil), n.Sources...)
	return n
}
