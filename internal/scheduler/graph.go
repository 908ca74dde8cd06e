package scheduler

import (
	"fmt"

	"github.com/gammazero/toposort"
)

// DependencyGraph indexes a backlog snapshot for structural validation.
// Dependencies pointing at ids that are not part of the snapshot are ignored
// everywhere: the excluded CRUD layer owns referential integrity, the engine
// only has to refuse cycles.
type DependencyGraph struct {
	items      map[string]*WorkItem
	dependents map[string][]string // item id -> ids that depend on it
}

// NewDependencyGraph builds the graph, rejecting duplicate item ids.
func NewDependencyGraph(items []*WorkItem) (*DependencyGraph, error) {
	g := &DependencyGraph{
		items:      make(map[string]*WorkItem, len(items)),
		dependents: make(map[string][]string),
	}

	for _, item := range items {
		if _, exists := g.items[item.ID]; exists {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		g.items[item.ID] = item
	}

	for _, item := range items {
		for _, depID := range item.DependsOn {
			if _, known := g.items[depID]; known {
				g.dependents[depID] = append(g.dependents[depID], item.ID)
			}
		}
	}

	return g, nil
}

// Validate runs a topological sort over the snapshot and returns a
// CyclicDependencyError carrying one concrete cycle path if it fails.
func (g *DependencyGraph) Validate() error {
	var edges []toposort.Edge
	for id, item := range g.items {
		deps := g.knownDeps(item)
		if len(deps) == 0 {
			// Edge from nil keeps dependency-free items in the sort result.
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, depID := range deps {
			edges = append(edges, toposort.Edge{depID, id})
		}
	}

	if _, err := toposort.Toposort(edges); err != nil {
		if path := FindCyclePath(g.DependencyMap()); path != nil {
			return &CyclicDependencyError{Path: path}
		}
		return fmt.Errorf("dependency graph validation: %w", err)
	}

	return nil
}

// ValidateNewDependency checks whether adding the edge dependsOn -> itemID
// would create a cycle, without mutating the graph. Intended as the
// pre-commit check run before the CRUD layer persists a new dependency.
func (g *DependencyGraph) ValidateNewDependency(itemID, dependsOn string) error {
	if itemID == dependsOn {
		return &CyclicDependencyError{Path: []string{itemID, itemID}}
	}

	adj := g.DependencyMap()
	adj[itemID] = append(append([]string(nil), adj[itemID]...), dependsOn)

	if path := FindCyclePath(adj); path != nil {
		return &CyclicDependencyError{Path: path}
	}
	return nil
}

// Dependents returns the ids of items that depend on the given item.
func (g *DependencyGraph) Dependents(id string) []string {
	return g.dependents[id]
}

// DependencyMap exports the adjacency view consumed by the cycle detector,
// restricted to dependencies that exist in the snapshot.
func (g *DependencyGraph) DependencyMap() DependencyMap {
	adj := make(DependencyMap, len(g.items))
	for id, item := range g.items {
		adj[id] = g.knownDeps(item)
	}
	return adj
}

func (g *DependencyGraph) knownDeps(item *WorkItem) []string {
	var deps []string
	for _, depID := range item.DependsOn {
		if _, known := g.items[depID]; known {
			deps = append(deps, depID)
		}
	}
	return deps
}
