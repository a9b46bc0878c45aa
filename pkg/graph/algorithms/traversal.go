package algorithms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/athapong/notegraph/pkg/graph"
)

type TraversalType string

const (
	BFS TraversalType = "BFS"
	DFS TraversalType = "DFS"
)

// GraphTraversal walks a relationship graph ignoring edge direction
type GraphTraversal struct {
	nodes     map[string]graph.Node
	adjacency map[string][]string
}

func NewGraphTraversal(data *graph.KnowledgeGraphData) *GraphTraversal {
	t := &GraphTraversal{
		nodes:     make(map[string]graph.Node),
		adjacency: make(map[string][]string),
	}
	if data == nil {
		return t
	}

	for _, n := range data.Nodes {
		t.nodes[n.ID] = n
	}
	for _, e := range data.Edges {
		if _, ok := t.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := t.nodes[e.Target]; !ok {
			continue
		}
		t.adjacency[e.Source] = append(t.adjacency[e.Source], e.Target)
		t.adjacency[e.Target] = append(t.adjacency[e.Target], e.Source)
	}
	for id := range t.adjacency {
		sort.Strings(t.adjacency[id])
	}
	return t
}

// Traverse returns the nodes reachable from startID within maxDepth hops,
// starting with startID itself.
func (t *GraphTraversal) Traverse(startID string, maxDepth int, traversalType TraversalType) ([]graph.Node, error) {
	if _, ok := t.nodes[startID]; !ok {
		return nil, fmt.Errorf("node not found: %s", startID)
	}

	visited := make(map[string]bool)
	switch traversalType {
	case BFS:
		return t.bfs(startID, maxDepth, visited), nil
	case DFS:
		result := make([]graph.Node, 0)
		t.dfs(startID, maxDepth, visited, &result)
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported traversal type: %s", traversalType)
	}
}

func (t *GraphTraversal) bfs(startID string, maxDepth int, visited map[string]bool) []graph.Node {
	queue := []string{startID}
	visited[startID] = true
	result := make([]graph.Node, 0)

	for depth := 0; len(queue) > 0 && depth <= maxDepth; depth++ {
		next := make([]string, 0)
		for _, current := range queue {
			result = append(result, t.nodes[current])
			for _, neighbor := range t.adjacency[current] {
				if !visited[neighbor] {
					visited[neighbor] = true
					next = append(next, neighbor)
				}
			}
		}
		queue = next
	}

	return result
}

func (t *GraphTraversal) dfs(currentID string, maxDepth int, visited map[string]bool, result *[]graph.Node) {
	if maxDepth < 0 || visited[currentID] {
		return
	}

	visited[currentID] = true
	*result = append(*result, t.nodes[currentID])

	for _, neighbor := range t.adjacency[currentID] {
		t.dfs(neighbor, maxDepth-1, visited, result)
	}
}

// Related returns the nodes within depth hops of every node labelled label
// (case-insensitive), excluding the matched nodes themselves.
func Related(data *graph.KnowledgeGraphData, label string, depth int) ([]graph.Node, error) {
	t := NewGraphTraversal(data)

	starts := make([]string, 0)
	for id, n := range t.nodes {
		if strings.EqualFold(strings.TrimSpace(n.Label), strings.TrimSpace(label)) {
			starts = append(starts, id)
		}
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("no node labelled %q", label)
	}
	sort.Strings(starts)

	exclude := make(map[string]bool, len(starts))
	for _, id := range starts {
		exclude[id] = true
	}

	seen := make(map[string]bool)
	related := make([]graph.Node, 0)
	for _, id := range starts {
		nodes, err := t.Traverse(id, depth, BFS)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if exclude[n.ID] || seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			related = append(related, n)
		}
	}
	return related, nil
}
