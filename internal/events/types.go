package events

import "time"

// Event is the base interface for all planner events.
type Event interface {
	EventType() string
}

// Topic constants
const (
	TopicRun     = "run"
	TopicWarning = "warning"
)

// Event type constants
const (
	EventTypeRunStarted    = "run.started"
	EventTypeRunCompleted  = "run.completed"
	EventTypeWarningRaised = "warning.raised"
)

// RunStartedEvent is published when a planning run begins.
type RunStartedEvent struct {
	Items     int
	Waves     int
	Workers   int
	Seed      int64
	Timestamp time.Time
}

func (e RunStartedEvent) EventType() string { return EventTypeRunStarted }

// RunCompletedEvent is published when a planning run finishes.
type RunCompletedEvent struct {
	Scheduled int
	Assigned  int
	Warnings  int
	Duration  time.Duration
	Timestamp time.Time
}

func (e RunCompletedEvent) EventType() string { return EventTypeRunCompleted }

// WarningRaisedEvent is published for every warning the run collects.
type WarningRaisedEvent struct {
	Kind      string
	WaveOrder int
	ItemIDs   []string
	Message   string
	Timestamp time.Time
}

func (e WarningRaisedEvent) EventType() string { return EventTypeWarningRaised }
