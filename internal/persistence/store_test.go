package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/waveplan/internal/scheduler"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewMemoryStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "backlog.db")

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err, "should create parent directories")
	defer store.Close()

	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "alice"}))
}

func TestSaveAndGetItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveWave(ctx, scheduler.Wave{ID: "wave-1", Order: 1}))
	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "alice"}))

	item := &scheduler.WorkItem{
		ID:           "a",
		Name:         "API design",
		WaveID:       "wave-1",
		Priority:     3,
		EffortPoints: 8,
	}
	require.NoError(t, store.SaveItem(ctx, item))

	got, err := store.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "API design", got.Name)
	assert.Equal(t, "wave-1", got.WaveID)
	assert.Equal(t, 3, got.Priority)
	assert.Equal(t, 8, got.EffortPoints)
	assert.Empty(t, got.AssignedWorkerID)
	assert.True(t, got.StartDate.IsZero(), "unscheduled item has no start date")
	assert.True(t, got.EndDate.IsZero())

	_, err = store.GetItem(ctx, "missing")
	assert.Error(t, err)
}

func TestSaveItemRejectsOffScaleEffort(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, points := range []int{0, 4, 22, -1} {
		err := store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", EffortPoints: points})
		require.Error(t, err, "effort %d should be rejected", points)
		assert.Contains(t, err.Error(), "not on the scale")
	}

	_, err := store.GetItem(ctx, "a")
	assert.Error(t, err, "rejected item must not be persisted")
}

func TestSaveItemUpsertsAndReplacesDependencies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: id, EffortPoints: 3}))
	}

	item := &scheduler.WorkItem{ID: "c", EffortPoints: 5, DependsOn: []string{"a", "b"}}
	require.NoError(t, store.SaveItem(ctx, item))

	got, err := store.GetItem(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 5, got.EffortPoints)
	assert.Equal(t, []string{"a", "b"}, got.DependsOn)

	// Saving again with a smaller set replaces, not appends.
	item.DependsOn = []string{"b"}
	require.NoError(t, store.SaveItem(ctx, item))

	got, err = store.GetItem(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.DependsOn)
}

func TestListItemsOrderedWithDependencies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "b", EffortPoints: 2}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", EffortPoints: 1}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "c", EffortPoints: 3, DependsOn: []string{"a"}}))

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
	assert.Equal(t, []string{"a"}, items[2].DependsOn)
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveWave(ctx, scheduler.Wave{ID: "wave-2", Order: 2}))
	require.NoError(t, store.SaveWave(ctx, scheduler.Wave{ID: "wave-1", Order: 1}))
	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "bob"}))
	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "alice"}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", WaveID: "wave-1", EffortPoints: 5}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "b", WaveID: "wave-2", EffortPoints: 3, DependsOn: []string{"a"}}))

	cfg := scheduler.Config{
		PointsPerSprint:   7,
		WorkdaysPerSprint: 5,
		GlobalStartDate:   date(2025, time.January, 6),
	}
	snap, err := store.LoadSnapshot(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg, snap.Config)
	require.Len(t, snap.Waves, 2)
	assert.Equal(t, "wave-1", snap.Waves[0].ID, "waves ordered by wave_order")
	require.Len(t, snap.Workers, 2)
	assert.Equal(t, "alice", snap.Workers[0].ID, "workers ordered by id")
	require.Len(t, snap.Items, 2)
	assert.Equal(t, []string{"a"}, snap.Items[1].DependsOn)
}

func TestSaveScheduleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveWave(ctx, scheduler.Wave{ID: "wave-1", Order: 1}))
	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "alice"}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", WaveID: "wave-1", EffortPoints: 8}))

	result := &scheduler.Result{
		Items: []*scheduler.WorkItem{{
			ID:               "a",
			WaveID:           "wave-1",
			EffortPoints:     8,
			AssignedWorkerID: "alice",
			StartDate:        date(2025, time.January, 6),
			EndDate:          date(2025, time.January, 13),
			DurationDays:     6,
		}},
		Warnings: []scheduler.Warning{{
			Kind:      scheduler.WarnDeadlock,
			WaveID:    "wave-1",
			WaveOrder: 1,
			ItemIDs:   []string{"a", "b"},
			Message:   "no worker could be assigned",
		}},
	}
	require.NoError(t, store.SaveSchedule(ctx, result))

	got, err := store.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AssignedWorkerID)
	assert.Equal(t, date(2025, time.January, 6), got.StartDate)
	assert.Equal(t, date(2025, time.January, 13), got.EndDate)
	assert.Equal(t, 6, got.DurationDays)

	warnings, err := store.ListWarnings(ctx)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, scheduler.WarnDeadlock, warnings[0].Kind)
	assert.Equal(t, 1, warnings[0].WaveOrder)
	assert.Equal(t, []string{"a", "b"}, warnings[0].ItemIDs)
}

func TestSaveScheduleReplacesWarnings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", EffortPoints: 1}))

	first := &scheduler.Result{Warnings: []scheduler.Warning{
		{Kind: scheduler.WarnDeadlock, Message: "stale"},
	}}
	require.NoError(t, store.SaveSchedule(ctx, first))

	second := &scheduler.Result{Warnings: []scheduler.Warning{
		{Kind: scheduler.WarnDependencyCorrection, Message: "fresh"},
	}}
	require.NoError(t, store.SaveSchedule(ctx, second))

	warnings, err := store.ListWarnings(ctx)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, scheduler.WarnDependencyCorrection, warnings[0].Kind)
	assert.Equal(t, "fresh", warnings[0].Message)
}

func TestSaveScheduleUnknownItemRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveWorker(ctx, scheduler.Worker{ID: "alice"}))
	require.NoError(t, store.SaveItem(ctx, &scheduler.WorkItem{ID: "a", EffortPoints: 1}))

	result := &scheduler.Result{Items: []*scheduler.WorkItem{
		{ID: "a", AssignedWorkerID: "alice", StartDate: date(2025, time.January, 6), EndDate: date(2025, time.January, 6), DurationDays: 1},
		{ID: "ghost", AssignedWorkerID: "alice"},
	}}
	err := store.SaveSchedule(ctx, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	// The whole transaction rolled back, including the valid update.
	got, err := store.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.AssignedWorkerID)
	assert.True(t, got.StartDate.IsZero())
}
