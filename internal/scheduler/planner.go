package scheduler

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aristath/waveplan/internal/calendar"
	"github.com/aristath/waveplan/internal/events"
)

// Planner runs one batch planning pass: order the backlog, derive dates,
// staff the waves. A run is a pure function of (snapshot, seed); it never
// mutates the snapshot and keeps no state between runs.
type Planner struct {
	log *slog.Logger
	bus *events.EventBus
}

// NewPlanner creates a Planner. Both the logger and the event bus may be
// nil; a nil bus simply disables progress events.
func NewPlanner(log *slog.Logger, bus *events.EventBus) *Planner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{log: log, bus: bus}
}

// Run executes a full planning pass over the snapshot. The seed drives only
// the equal-load worker tie-break; identical snapshot and seed reproduce an
// identical result.
//
// Fatal conditions (cyclic dependencies, no workers, missing effort) return
// an error and no result. Per-wave convergence problems are returned as
// warnings on a best-effort result.
func (p *Planner) Run(snap *Snapshot, seed int64) (*Result, error) {
	started := time.Now()

	if err := validateConfig(snap.Config); err != nil {
		return nil, err
	}

	p.publish(events.TopicRun, events.RunStartedEvent{
		Items:     len(snap.Items),
		Waves:     len(snap.Waves),
		Workers:   len(snap.Workers),
		Seed:      seed,
		Timestamp: time.Now(),
	})

	items := cloneItems(snap.Items)
	stampWaveOrders(items, snap.Waves)

	graph, err := NewDependencyGraph(items)
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	sorted, err := Sort(items)
	if err != nil {
		return nil, err
	}

	cal := calendar.New(snap.Config.Holidays)
	if err := Calculate(sorted, cal, snap.Config.GlobalStartDate, snap.Config.Velocity()); err != nil {
		return nil, err
	}

	alloc := NewAllocator(cal, snap.Workers, snap.Config.MaxIterations, rand.New(rand.NewSource(seed)), p.log)
	warnings, err := alloc.Allocate(sorted)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, alloc.FinalConsistencyPass(sorted)...)

	for _, w := range warnings {
		p.publish(events.TopicWarning, events.WarningRaisedEvent{
			Kind:      string(w.Kind),
			WaveOrder: w.WaveOrder,
			ItemIDs:   w.ItemIDs,
			Message:   w.Message,
			Timestamp: time.Now(),
		})
	}

	assigned := 0
	for _, item := range sorted {
		if item.AssignedWorkerID != "" {
			assigned++
		}
	}
	p.publish(events.TopicRun, events.RunCompletedEvent{
		Scheduled: len(sorted),
		Assigned:  assigned,
		Warnings:  len(warnings),
		Duration:  time.Since(started),
		Timestamp: time.Now(),
	})
	p.log.Info("planning run completed",
		"items", len(sorted),
		"assigned", assigned,
		"warnings", len(warnings),
		"elapsed", time.Since(started))

	return &Result{Items: sorted, Warnings: warnings}, nil
}

func (p *Planner) publish(topic string, event events.Event) {
	if p.bus != nil {
		p.bus.Publish(topic, event)
	}
}

// stampWaveOrders precomputes the item -> wave order lookup once and writes
// it onto the items. Items without a wave (or with an unknown wave id) plan
// as wave 0.
func stampWaveOrders(items []*WorkItem, waves []Wave) {
	orders := make(map[string]int, len(waves))
	for _, w := range waves {
		orders[w.ID] = w.Order
	}
	for _, item := range items {
		if item.WaveID != "" {
			item.WaveOrder = orders[item.WaveID]
		}
	}
}

func validateConfig(cfg Config) error {
	if cfg.PointsPerSprint <= 0 {
		return fmt.Errorf("config: points per sprint must be positive, got %d", cfg.PointsPerSprint)
	}
	if cfg.WorkdaysPerSprint <= 0 {
		return fmt.Errorf("config: workdays per sprint must be positive, got %d", cfg.WorkdaysPerSprint)
	}
	if cfg.GlobalStartDate.IsZero() {
		return fmt.Errorf("config: global start date is required")
	}
	return nil
}
