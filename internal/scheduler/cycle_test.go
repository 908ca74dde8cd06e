package scheduler

import (
	"reflect"
	"strconv"
	"testing"
)

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		graph DependencyMap
		want  bool
	}{
		{
			name:  "empty graph",
			graph: DependencyMap{},
			want:  false,
		},
		{
			name:  "linear chain",
			graph: DependencyMap{"c": {"b"}, "b": {"a"}, "a": nil},
			want:  false,
		},
		{
			name:  "diamond",
			graph: DependencyMap{"d": {"b", "c"}, "b": {"a"}, "c": {"a"}, "a": nil},
			want:  false,
		},
		{
			name:  "self-loop",
			graph: DependencyMap{"a": {"a"}},
			want:  true,
		},
		{
			name:  "two-node cycle",
			graph: DependencyMap{"a": {"b"}, "b": {"a"}},
			want:  true,
		},
		{
			name:  "transitive cycle",
			graph: DependencyMap{"a": {"b"}, "b": {"c"}, "c": {"a"}},
			want:  true,
		},
		{
			name:  "cycle in second component",
			graph: DependencyMap{"a": {"b"}, "b": nil, "x": {"y"}, "y": {"x"}},
			want:  true,
		},
		{
			name:  "dependency on absent id is a leaf",
			graph: DependencyMap{"a": {"ghost"}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCycle(tt.graph); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindCyclePath(t *testing.T) {
	t.Run("acyclic returns nil", func(t *testing.T) {
		graph := DependencyMap{"b": {"a"}, "a": nil}
		if path := FindCyclePath(graph); path != nil {
			t.Errorf("expected nil path, got %v", path)
		}
	})

	t.Run("self-loop is the minimal closed path", func(t *testing.T) {
		graph := DependencyMap{"a": {"a"}}
		want := []string{"a", "a"}
		if got := FindCyclePath(graph); !reflect.DeepEqual(got, want) {
			t.Errorf("FindCyclePath() = %v, want %v", got, want)
		}
	})

	t.Run("cycle path is closed", func(t *testing.T) {
		graph := DependencyMap{"a": {"b"}, "b": {"c"}, "c": {"a"}, "d": {"a"}}
		path := FindCyclePath(graph)
		if len(path) < 3 {
			t.Fatalf("expected a closed cycle path, got %v", path)
		}
		if path[0] != path[len(path)-1] {
			t.Errorf("path %v is not closed", path)
		}
		members := map[string]bool{}
		for _, id := range path[:len(path)-1] {
			members[id] = true
		}
		for _, id := range []string{"a", "b", "c"} {
			if !members[id] {
				t.Errorf("cycle member %q missing from path %v", id, path)
			}
		}
	})

	t.Run("path edges follow the graph", func(t *testing.T) {
		graph := DependencyMap{"a": {"x", "b"}, "b": {"a"}, "x": nil}
		path := FindCyclePath(graph)
		if path == nil {
			t.Fatal("expected a cycle")
		}
		for i := 0; i < len(path)-1; i++ {
			found := false
			for _, dep := range graph[path[i]] {
				if dep == path[i+1] {
					found = true
				}
			}
			if !found {
				t.Errorf("edge %s -> %s in path %v does not exist in graph", path[i], path[i+1], path)
			}
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		graph := DependencyMap{"a": {"b"}, "b": {"a"}, "c": {"d"}, "d": {"c"}}
		first := FindCyclePath(graph)
		for i := 0; i < 5; i++ {
			if got := FindCyclePath(graph); !reflect.DeepEqual(got, first) {
				t.Fatalf("non-deterministic cycle path: %v vs %v", got, first)
			}
		}
	})
}

func TestFindCyclePathDeepGraph(t *testing.T) {
	// A recursion-based DFS would overflow on a chain this long.
	graph := make(DependencyMap, 200000)
	prev := "n0"
	for i := 1; i < 200000; i++ {
		id := "n" + strconv.Itoa(i)
		graph[id] = []string{prev}
		prev = id
	}

	if path := FindCyclePath(graph); path != nil {
		t.Errorf("expected no cycle in deep chain, got %v", path)
	}
}
