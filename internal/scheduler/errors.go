package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoWorkersAvailable aborts a run before any wave is processed when the
// worker pool is empty.
var ErrNoWorkersAvailable = errors.New("no workers available for allocation")

// CyclicDependencyError is returned when the dependency graph contains a
// cycle. Path is a closed walk: first and last element are the same item.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// MissingEffortError is returned when an item reaches the schedule
// calculator without effort points.
type MissingEffortError struct {
	ItemID string
}

func (e *MissingEffortError) Error() string {
	return fmt.Sprintf("item %q has no effort points, cannot derive a duration", e.ItemID)
}
