package scheduler

import "time"

// dateRange is an inclusive calendar interval.
type dateRange struct {
	start, end time.Time
}

// overlaps uses the closed-interval test: two ranges conflict iff
// s1 <= e2 && s2 <= e1.
func (r dateRange) overlaps(other dateRange) bool {
	return !r.start.After(other.end) && !other.start.After(r.end)
}

// workerIntervals is the allocator's ledger of calendar ranges each worker
// is already committed to. It is the per-resource exclusivity check of the
// run: a worker may hold any number of items as long as their date ranges
// never overlap.
type workerIntervals struct {
	busy map[string][]dateRange
}

func newWorkerIntervals() *workerIntervals {
	return &workerIntervals{busy: make(map[string][]dateRange)}
}

// add commits [start, end] to the worker.
func (w *workerIntervals) add(workerID string, start, end time.Time) {
	w.busy[workerID] = append(w.busy[workerID], dateRange{start: start, end: end})
}

// conflicts reports whether [start, end] overlaps any committed range of the
// worker.
func (w *workerIntervals) conflicts(workerID string, start, end time.Time) bool {
	candidate := dateRange{start: start, end: end}
	for _, r := range w.busy[workerID] {
		if r.overlaps(candidate) {
			return true
		}
	}
	return false
}
