package scheduler

import "time"

// ShiftState tracks how the allocator has moved an item within the current
// wave pass. Assignment is terminal and clears the state.
type ShiftState int

const (
	Unshifted            ShiftState = iota // never moved in this wave pass
	ShiftedAwaitingRetry                   // moved last iteration, gets one retry grace
	ShiftedStable                          // skipped once after a shift, may move again
)

// EffortScale lists the accepted effort point values, ascending.
var EffortScale = []int{1, 2, 3, 5, 8, 13, 21}

// ValidEffort reports whether points is on the effort scale.
func ValidEffort(points int) bool {
	for _, p := range EffortScale {
		if p == points {
			return true
		}
	}
	return false
}

// WorkItem is a unit of backlog work. Dates and the worker assignment are
// outputs of a planning run; WaveOrder is stamped from the owning wave before
// the run starts (0 means the item belongs to no wave).
type WorkItem struct {
	ID               string
	Name             string
	WaveID           string
	WaveOrder        int
	Priority         int // ascending: lower is more urgent
	EffortPoints     int
	DependsOn        []string
	AssignedWorkerID string
	StartDate        time.Time
	EndDate          time.Time
	DurationDays     int
}

// Scheduled reports whether the item has computed dates.
func (i *WorkItem) Scheduled() bool {
	return !i.StartDate.IsZero() && !i.EndDate.IsZero()
}

// Wave groups items into a delivery increment. Lower order delivers earlier;
// orders are positive but need not be contiguous.
type Wave struct {
	ID    string
	Order int
}

// Worker is an assignable pool member, identity only.
type Worker struct {
	ID string
}

// Config carries the planning parameters for one run.
type Config struct {
	PointsPerSprint   int
	WorkdaysPerSprint int
	GlobalStartDate   time.Time
	Holidays          []time.Time
	MaxIterations     int // per-wave allocation bound, defaults to DefaultMaxIterations
}

// DefaultMaxIterations bounds the per-wave allocation loop.
const DefaultMaxIterations = 1000

// Velocity returns the planning velocity in points per workday.
func (c Config) Velocity() float64 {
	return float64(c.PointsPerSprint) / float64(c.WorkdaysPerSprint)
}

// Snapshot is the full immutable input of a planning run.
type Snapshot struct {
	Items   []*WorkItem
	Waves   []Wave
	Workers []Worker
	Config  Config
}

// WarningKind classifies recoverable planning issues.
type WarningKind string

const (
	WarnDeadlock             WarningKind = "deadlock"
	WarnDependencyCorrection WarningKind = "dependency_correction"
	WarnWorkerOverlap        WarningKind = "worker_overlap"
)

// Warning describes a recoverable issue found during a run, with enough
// context for the caller to render it without re-deriving state.
type Warning struct {
	Kind      WarningKind
	WaveID    string
	WaveOrder int
	ItemIDs   []string
	Message   string
}

// Result is the output of a planning run: scheduled, assigned copies of the
// input items plus any warnings collected along the way.
type Result struct {
	Items    []*WorkItem
	Warnings []Warning
}

func cloneItem(item *WorkItem) *WorkItem {
	if item == nil {
		return nil
	}

	cp := *item
	if item.DependsOn != nil {
		cp.DependsOn = append([]string(nil), item.DependsOn...)
	}
	return &cp
}

func cloneItems(items []*WorkItem) []*WorkItem {
	out := make([]*WorkItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func itemsByID(items []*WorkItem) map[string]*WorkItem {
	byID := make(map[string]*WorkItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
