package scheduler

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"github.com/aristath/waveplan/internal/calendar"
)

// Allocator assigns scheduled items to workers wave by wave. Assignment is
// greedy: within a wave the highest-priority item that fits a free worker
// wins, items that fit nobody are pushed forward one workday at a time, and
// a wave that stops making progress is declared deadlocked without aborting
// the run.
type Allocator struct {
	cal           *calendar.Calendar
	workers       []Worker
	maxIterations int
	rng           *rand.Rand
	log           *slog.Logger
}

// NewAllocator creates an Allocator. The random source drives only the
// tie-break between equally loaded workers; inject a fixed seed for
// reproducible runs, nil selects a fixed-seed source. maxIterations <= 0
// selects DefaultMaxIterations.
func NewAllocator(cal *calendar.Calendar, workers []Worker, maxIterations int, rng *rand.Rand, log *slog.Logger) *Allocator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Stable worker order so equal-load candidates are enumerated the same
	// way on every run.
	sorted := append([]Worker(nil), workers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return &Allocator{
		cal:           cal,
		workers:       sorted,
		maxIterations: maxIterations,
		rng:           rng,
		log:           log,
	}
}

// Allocate assigns every item it can, mutating items in place, and returns
// the warnings for waves it could not fully staff. Items must already carry
// dates (run Calculate first). Pre-existing assignments are honored and
// count toward worker load.
func (a *Allocator) Allocate(items []*WorkItem) ([]Warning, error) {
	if len(a.workers) == 0 {
		return nil, ErrNoWorkersAvailable
	}

	byID := itemsByID(items)
	intervals := newWorkerIntervals()
	load := make(map[string]int)

	for _, item := range items {
		if item.AssignedWorkerID != "" && item.Scheduled() {
			intervals.add(item.AssignedWorkerID, item.StartDate, item.EndDate)
			load[item.AssignedWorkerID] += item.EffortPoints
		}
	}

	var warnings []Warning
	for _, order := range waveOrders(items) {
		if w := a.allocateWave(order, items, byID, intervals, load); w != nil {
			warnings = append(warnings, *w)
		}
	}

	return warnings, nil
}

// allocateWave runs the bounded assign/shift loop for one wave. Returns a
// deadlock warning when the wave stalls or exhausts the iteration budget.
func (a *Allocator) allocateWave(order int, items []*WorkItem, byID map[string]*WorkItem, intervals *workerIntervals, load map[string]int) *Warning {
	pending := wavePending(items, order)
	if len(pending) == 0 {
		return nil
	}

	state := make(map[string]ShiftState, len(pending))

	for iter := 0; iter < a.maxIterations; iter++ {
		if len(pending) == 0 {
			return nil
		}

		assigned, shifted := a.scanWave(pending, byID, intervals, load, state)
		if assigned {
			pending = wavePending(items, order)
			continue
		}
		if !shifted {
			// Nothing assigned and nothing moved: this wave cannot converge.
			return a.deadlockWarning(order, pending, iter+1)
		}
	}

	pending = wavePending(items, order)
	if len(pending) == 0 {
		return nil
	}
	return a.deadlockWarning(order, pending, a.maxIterations)
}

// scanWave walks the pending items once in priority order. The first item
// that fits a free worker is assigned and the scan restarts; items that fit
// nobody are shifted one workday unless they earned a one-round grace by
// shifting in the previous scan while an unshifted item still had a chance.
func (a *Allocator) scanWave(pending []*WorkItem, byID map[string]*WorkItem, intervals *workerIntervals, load map[string]int, state map[string]ShiftState) (assigned, shifted bool) {
	for _, item := range pending {
		a.pushPastDependencies(item, byID)

		free := a.freeWorkers(item, intervals)
		if len(free) > 0 {
			workerID := a.pickWorker(free, load)
			item.AssignedWorkerID = workerID
			intervals.add(workerID, item.StartDate, item.EndDate)
			load[workerID] += item.EffortPoints
			delete(state, item.ID)
			a.log.Debug("item assigned",
				"item", item.ID,
				"worker", workerID,
				"start", item.StartDate.Format("2006-01-02"),
				"end", item.EndDate.Format("2006-01-02"))
			return true, false
		}

		if state[item.ID] == ShiftedAwaitingRetry && anyUnshifted(pending, item, state) {
			// Just moved last round; give untouched items their turn first.
			state[item.ID] = ShiftedStable
			continue
		}

		item.StartDate = a.cal.WorkdayAfter(item.StartDate)
		item.EndDate = a.cal.AddWorkdays(item.StartDate, item.DurationDays-1)
		state[item.ID] = ShiftedAwaitingRetry
		shifted = true
	}

	return false, shifted
}

// pushPastDependencies moves the item after its latest dependency end if a
// dependency has not ended before the item starts, keeping duration fixed.
func (a *Allocator) pushPastDependencies(item *WorkItem, byID map[string]*WorkItem) {
	end, ok := latestDependencyEnd(item, byID)
	if !ok || item.StartDate.After(end) {
		return
	}
	item.StartDate = a.cal.WorkdayAfter(end)
	item.EndDate = a.cal.AddWorkdays(item.StartDate, item.DurationDays-1)
}

// freeWorkers returns the workers with no committed range overlapping the
// item's dates, in stable id order.
func (a *Allocator) freeWorkers(item *WorkItem, intervals *workerIntervals) []Worker {
	var free []Worker
	for _, w := range a.workers {
		if !intervals.conflicts(w.ID, item.StartDate, item.EndDate) {
			free = append(free, w)
		}
	}
	return free
}

// pickWorker selects the least-loaded free worker, breaking ties with the
// injected random source.
func (a *Allocator) pickWorker(free []Worker, load map[string]int) string {
	minLoad := load[free[0].ID]
	for _, w := range free[1:] {
		if load[w.ID] < minLoad {
			minLoad = load[w.ID]
		}
	}

	var candidates []string
	for _, w := range free {
		if load[w.ID] == minLoad {
			candidates = append(candidates, w.ID)
		}
	}

	if len(candidates) == 1 {
		return candidates[0]
	}
	return candidates[a.rng.Intn(len(candidates))]
}

func (a *Allocator) deadlockWarning(order int, pending []*WorkItem, iterations int) *Warning {
	ids := make([]string, len(pending))
	for i, item := range pending {
		ids[i] = item.ID
	}
	sort.Strings(ids)

	w := &Warning{
		Kind:      WarnDeadlock,
		WaveID:    pending[0].WaveID,
		WaveOrder: order,
		ItemIDs:   ids,
		Message: fmt.Sprintf("wave %d deadlocked after %d iterations, unassigned items: %s",
			order, iterations, strings.Join(ids, ", ")),
	}
	a.log.Warn("wave deadlocked", "wave", order, "iterations", iterations, "items", ids)
	return w
}

// waveOrders returns the distinct wave orders present, ascending. Wave 0,
// when present, leads as the pre-wave.
func waveOrders(items []*WorkItem) []int {
	seen := make(map[int]bool)
	var orders []int
	for _, item := range items {
		if !seen[item.WaveOrder] {
			seen[item.WaveOrder] = true
			orders = append(orders, item.WaveOrder)
		}
	}
	sort.Ints(orders)
	return orders
}

// wavePending returns the wave's unassigned items ordered by priority, item
// id breaking ties.
func wavePending(items []*WorkItem, order int) []*WorkItem {
	var pending []*WorkItem
	for _, item := range items {
		if item.WaveOrder == order && item.AssignedWorkerID == "" {
			pending = append(pending, item)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority < pending[j].Priority
		}
		return pending[i].ID < pending[j].ID
	})
	return pending
}

// anyUnshifted reports whether another pending item still has an unshifted
// opportunity this pass.
func anyUnshifted(pending []*WorkItem, except *WorkItem, state map[string]ShiftState) bool {
	for _, item := range pending {
		if item.ID != except.ID && state[item.ID] == Unshifted {
			return true
		}
	}
	return false
}
