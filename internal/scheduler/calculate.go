package scheduler

import (
	"math"
	"time"

	"github.com/aristath/waveplan/internal/calendar"
)

// scheduleState threads the accumulators of a calculation pass as explicit
// local state: the latest end date seen per wave and per worker.
type scheduleState struct {
	waveEnd map[int]time.Time
	lastEnd map[string]time.Time
}

func newScheduleState() *scheduleState {
	return &scheduleState{
		waveEnd: make(map[int]time.Time),
		lastEnd: make(map[string]time.Time),
	}
}

// priorWaveEnd returns the end date of the highest wave below order seen so
// far. Wave 0 neither imposes this barrier nor is subject to it.
func (s *scheduleState) priorWaveEnd(order int) (time.Time, bool) {
	prior := 0
	for w := range s.waveEnd {
		if w > 0 && w < order && w > prior {
			prior = w
		}
	}
	if prior == 0 {
		return time.Time{}, false
	}
	return s.waveEnd[prior], true
}

func (s *scheduleState) recordEnd(item *WorkItem) {
	if item.EndDate.After(s.waveEnd[item.WaveOrder]) {
		s.waveEnd[item.WaveOrder] = item.EndDate
	}
	if item.AssignedWorkerID != "" && item.EndDate.After(s.lastEnd[item.AssignedWorkerID]) {
		s.lastEnd[item.AssignedWorkerID] = item.EndDate
	}
}

// Calculate derives start/end dates and workday durations for items already
// in topological order, mutating them in place and preserving the order.
//
// Each item starts at the latest of the global start, the day after its
// prior wave finished, the day after its last dependency finished, and (when
// an assignment is already known) the day after its worker's previous item.
// Re-running Calculate on consistent output reproduces the same dates.
//
// The topological-order precondition is not re-checked; run Sort first.
func Calculate(items []*WorkItem, cal *calendar.Calendar, globalStart time.Time, velocity float64) error {
	byID := itemsByID(items)
	state := newScheduleState()

	for _, item := range items {
		if item.EffortPoints <= 0 {
			return &MissingEffortError{ItemID: item.ID}
		}
		item.DurationDays = durationDays(item.EffortPoints, velocity)

		earliest := globalStart

		if item.WaveOrder > 0 {
			if end, ok := state.priorWaveEnd(item.WaveOrder); ok {
				earliest = maxTime(earliest, cal.WorkdayAfter(end))
			}
		}

		if end, ok := latestDependencyEnd(item, byID); ok {
			earliest = maxTime(earliest, cal.WorkdayAfter(end))
		}

		if item.AssignedWorkerID != "" {
			if end, ok := state.lastEnd[item.AssignedWorkerID]; ok {
				earliest = maxTime(earliest, cal.WorkdayAfter(end))
			}
		}

		item.StartDate = cal.NextWorkday(earliest)
		item.EndDate = cal.AddWorkdays(item.StartDate, item.DurationDays-1)

		state.recordEnd(item)
	}

	return nil
}

// durationDays converts effort points to whole workdays at the given
// velocity, never below one day.
func durationDays(points int, velocity float64) int {
	days := int(math.Ceil(float64(points) / velocity))
	if days < 1 {
		return 1
	}
	return days
}

// latestDependencyEnd returns the maximum end date among the item's
// dependencies that exist and already carry dates.
func latestDependencyEnd(item *WorkItem, byID map[string]*WorkItem) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, depID := range item.DependsOn {
		dep, known := byID[depID]
		if !known || dep.EndDate.IsZero() {
			continue
		}
		if dep.EndDate.After(latest) {
			latest = dep.EndDate
		}
		found = true
	}
	return latest, found
}
