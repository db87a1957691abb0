package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is a directed graph over string node IDs. An edge A -> B means
// "B depends on A": A must come before B in a topological order.
type Graph struct {
	nodes map[string]*node
}

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID to the graph. Adding an existing
// ID is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// HasNode reports whether the graph contains the given ID.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddEdge records that toID depends on fromID. An error is returned if either
// node does not exist or if the edge would be a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, toID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns a sorted slice of node IDs that the given node
// depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// DetectCycle checks the graph for cycles. It returns a non-nil error naming
// the full cycle chain when one is found.
func (g *Graph) DetectCycle() error {
	// Classic depth-first search with three node sets: permanent (fully
	// visited, known safe), temporary (on the current recursion stack), and
	// unvisited. Nodes are visited in sorted order so the reported chain is
	// deterministic.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected: %s", chainString(stack, n.id))
		}

		temporary[n.id] = true
		stack = append(stack, n.id)

		for _, depID := range sortedKeys(n.dependents) {
			if err := visit(n.dependents[depID]); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range sortedKeys(g.nodes) {
		if !permanent[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalOrder returns all node IDs ordered so that every node appears
// after its dependencies. Ties are broken by sorting IDs, so the result is
// deterministic. An error is returned when the graph contains a cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.DetectCycle(); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		n := g.nodes[id]
		var unlocked []string
		for depID := range n.dependents {
			indegree[depID]--
			if indegree[depID] == 0 {
				unlocked = append(unlocked, depID)
			}
		}
		sort.Strings(unlocked)
		ready = mergeSorted(ready, unlocked)
	}

	return order, nil
}

// chainString renders the portion of the recursion stack that forms the
// cycle, closing the loop on the repeated node.
func chainString(stack []string, repeat string) string {
	start := 0
	for i, id := range stack {
		if id == repeat {
			start = i
			break
		}
	}
	parts := append(append([]string{}, stack[start:]...), repeat)
	return strings.Join(parts, " -> ")
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
