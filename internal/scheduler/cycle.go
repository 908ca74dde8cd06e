package scheduler

import "sort"

// DependencyMap is an adjacency view of the backlog: item id -> ids it
// depends on. Ids that appear only on the right-hand side are treated as
// nodes with no outgoing edges.
type DependencyMap map[string][]string

// HasCycle reports whether the dependency map contains any cycle, including
// self-loops.
func HasCycle(graph DependencyMap) bool {
	return FindCyclePath(graph) != nil
}

// dfs colors for cycle detection.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// FindCyclePath returns one cycle as a closed path (first id == last id), or
// nil when the graph is acyclic. A self-loop yields the minimal path [a, a].
//
// The walk is an explicit-stack DFS so arbitrarily deep graphs cannot blow
// the goroutine stack; roots are visited in sorted order so the reported
// cycle is deterministic.
func FindCyclePath(graph DependencyMap) []string {
	color := make(map[string]int, len(graph))

	roots := make([]string, 0, len(graph))
	for id := range graph {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	// Each frame remembers how far into a node's dependency list the walk
	// has progressed; path mirrors the stack's node ids.
	type frame struct {
		node string
		next int
	}

	for _, root := range roots {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root}}
		path := []string{root}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := graph[top.node]

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++

				switch color[dep] {
				case gray:
					// Back-edge: the cycle is the path from dep's first
					// occurrence to the current node, closed with dep.
					for i, id := range path {
						if id == dep {
							cycle := append([]string(nil), path[i:]...)
							return append(cycle, dep)
						}
					}
				case white:
					color[dep] = gray
					stack = append(stack, frame{node: dep})
					path = append(path, dep)
				}
				continue
			}

			color[top.node] = black
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}

	return nil
}
