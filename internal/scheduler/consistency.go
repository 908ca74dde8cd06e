package scheduler

import (
	"fmt"
	"sort"
)

// FinalConsistencyPass re-checks every item's start against its
// dependencies in one topological sweep. Allocation can move a dependency
// after its dependent was first scheduled; this pass pulls such dependents
// forward in place and reports each correction. One sweep converges because
// items are visited in dependency order.
//
// After correcting dates it re-runs the worker overlap check: a correction
// can push an item into a range its worker already holds. Such collisions
// are reported as warnings rather than fixed; re-staffing is the next run's
// job.
func (a *Allocator) FinalConsistencyPass(items []*WorkItem) []Warning {
	byID := itemsByID(items)
	var warnings []Warning

	for _, item := range items {
		end, ok := latestDependencyEnd(item, byID)
		if !ok || !item.Scheduled() {
			continue
		}

		minStart := a.cal.WorkdayAfter(end)
		if !item.StartDate.Before(minStart) {
			continue
		}

		was := item.StartDate
		item.StartDate = minStart
		item.EndDate = a.cal.AddWorkdays(item.StartDate, item.DurationDays-1)

		warnings = append(warnings, Warning{
			Kind:      WarnDependencyCorrection,
			WaveID:    item.WaveID,
			WaveOrder: item.WaveOrder,
			ItemIDs:   []string{item.ID},
			Message: fmt.Sprintf("item %s started %s, before its dependencies ended; moved to %s",
				item.ID, was.Format("2006-01-02"), minStart.Format("2006-01-02")),
		})
		a.log.Warn("dependency correction",
			"item", item.ID,
			"was", was.Format("2006-01-02"),
			"now", minStart.Format("2006-01-02"))
	}

	if len(warnings) > 0 {
		warnings = append(warnings, a.checkWorkerOverlaps(items)...)
	}
	return warnings
}

// checkWorkerOverlaps scans each worker's assigned items for overlapping
// date ranges and reports one warning per colliding pair.
func (a *Allocator) checkWorkerOverlaps(items []*WorkItem) []Warning {
	byWorker := make(map[string][]*WorkItem)
	for _, item := range items {
		if item.AssignedWorkerID != "" && item.Scheduled() {
			byWorker[item.AssignedWorkerID] = append(byWorker[item.AssignedWorkerID], item)
		}
	}

	workerIDs := make([]string, 0, len(byWorker))
	for id := range byWorker {
		workerIDs = append(workerIDs, id)
	}
	sort.Strings(workerIDs)

	var warnings []Warning
	for _, workerID := range workerIDs {
		assigned := byWorker[workerID]
		sort.Slice(assigned, func(i, j int) bool {
			if !assigned[i].StartDate.Equal(assigned[j].StartDate) {
				return assigned[i].StartDate.Before(assigned[j].StartDate)
			}
			return assigned[i].ID < assigned[j].ID
		})

		for i := 1; i < len(assigned); i++ {
			prev, cur := assigned[i-1], assigned[i]
			if cur.StartDate.After(prev.EndDate) {
				continue
			}
			warnings = append(warnings, Warning{
				Kind:      WarnWorkerOverlap,
				WaveID:    cur.WaveID,
				WaveOrder: cur.WaveOrder,
				ItemIDs:   []string{prev.ID, cur.ID},
				Message: fmt.Sprintf("worker %s holds overlapping items %s and %s after dependency correction",
					workerID, prev.ID, cur.ID),
			})
		}
	}
	return warnings
}
