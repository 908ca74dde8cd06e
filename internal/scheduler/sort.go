package scheduler

import "container/heap"

// compositeKeyScale folds wave order and priority into one ascending key.
// It caps meaningful priorities at 9999 per wave; beyond that the ordering
// between waves could invert. Backlogs anywhere near that size should sort
// by the (waveOrder, priority) pair instead.
const compositeKeyScale = 10000

func compositeKey(item *WorkItem) int {
	return item.WaveOrder*compositeKeyScale + item.Priority
}

// readyHeap is a min-heap of items whose dependencies are all emitted,
// ordered by composite key with the item id as the deterministic tie-break.
type readyHeap []*WorkItem

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	ki, kj := compositeKey(h[i]), compositeKey(h[j])
	if ki != kj {
		return ki < kj
	}
	return h[i].ID < h[j].ID
}

func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x any) { *h = append(*h, x.(*WorkItem)) }

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Sort orders items so that every dependency precedes its dependents, and
// among simultaneously ready items the lowest composite (wave, priority) key
// is emitted first. Kahn's algorithm with a priority-ordered ready set.
//
// Dependencies on ids outside the item set are ignored. A cycle fails the
// whole sort with a CyclicDependencyError; no partial order is returned.
func Sort(items []*WorkItem) ([]*WorkItem, error) {
	byID := itemsByID(items)

	inDegree := make(map[string]int, len(items))
	dependents := make(map[string][]string, len(items))
	for _, item := range items {
		for _, depID := range item.DependsOn {
			if _, known := byID[depID]; !known {
				continue
			}
			inDegree[item.ID]++
			dependents[depID] = append(dependents[depID], item.ID)
		}
	}

	ready := &readyHeap{}
	for _, item := range items {
		if inDegree[item.ID] == 0 {
			heap.Push(ready, item)
		}
	}

	ordered := make([]*WorkItem, 0, len(items))
	for ready.Len() > 0 {
		item := heap.Pop(ready).(*WorkItem)
		ordered = append(ordered, item)

		for _, depID := range dependents[item.ID] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				heap.Push(ready, byID[depID])
			}
		}
	}

	if len(ordered) < len(items) {
		graph, err := NewDependencyGraph(items)
		if err != nil {
			return nil, err
		}
		if path := FindCyclePath(graph.DependencyMap()); path != nil {
			return nil, &CyclicDependencyError{Path: path}
		}
		// Unreachable for well-formed input: a short Kahn result implies a cycle.
		return nil, &CyclicDependencyError{}
	}

	return ordered, nil
}
