package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/waveplan/internal/scheduler"
)

const dateLayout = "2006-01-02"

// SaveWave inserts or updates a wave.
func (s *SQLiteStore) SaveWave(ctx context.Context, wave scheduler.Wave) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waves (id, wave_order) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET wave_order = excluded.wave_order
	`, wave.ID, wave.Order)
	if err != nil {
		return fmt.Errorf("failed to upsert wave %s: %w", wave.ID, err)
	}
	return nil
}

// SaveWorker inserts a worker if it does not exist yet.
func (s *SQLiteStore) SaveWorker(ctx context.Context, worker scheduler.Worker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id) VALUES (?) ON CONFLICT(id) DO NOTHING
	`, worker.ID)
	if err != nil {
		return fmt.Errorf("failed to insert worker %s: %w", worker.ID, err)
	}
	return nil
}

// SaveItem saves or updates an item and its dependencies after checking the
// effort points sit on the accepted scale.
// Uses ON CONFLICT to make saves idempotent.
func (s *SQLiteStore) SaveItem(ctx context.Context, item *scheduler.WorkItem) error {
	if !scheduler.ValidEffort(item.EffortPoints) {
		return fmt.Errorf("item %s: effort %d is not on the scale %v", item.ID, item.EffortPoints, scheduler.EffortScale)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, name, wave_id, priority, effort_points, assigned_worker_id,
			start_date, end_date, duration_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			wave_id = excluded.wave_id,
			priority = excluded.priority,
			effort_points = excluded.effort_points,
			assigned_worker_id = excluded.assigned_worker_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			duration_days = excluded.duration_days,
			updated_at = CURRENT_TIMESTAMP
	`, item.ID, item.Name, nullString(item.WaveID), item.Priority, item.EffortPoints,
		nullString(item.AssignedWorkerID), nullDate(item.StartDate), nullDate(item.EndDate),
		nullInt(item.DurationDays))
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM item_dependencies WHERE item_id = ?`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to delete old dependencies: %w", err)
	}

	for _, depID := range item.DependsOn {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO item_dependencies (item_id, depends_on_id) VALUES (?, ?)
		`, item.ID, depID)
		if err != nil {
			return fmt.Errorf("failed to insert dependency %s -> %s: %w", item.ID, depID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetItem retrieves an item by ID, including its dependencies.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*scheduler.WorkItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, wave_id, priority, effort_points, assigned_worker_id,
			start_date, end_date, duration_days
		FROM items WHERE id = ?
	`, itemID)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item not found: %s", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	deps, err := s.itemDependencies(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.DependsOn = deps

	return item, nil
}

// ListItems returns all items with their dependencies, ordered by id.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]*scheduler.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, wave_id, priority, effort_points, assigned_worker_id,
			start_date, end_date, duration_days
		FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*scheduler.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	deps, err := s.allDependencies(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.DependsOn = deps[item.ID]
	}

	return items, nil
}

func (s *SQLiteStore) itemDependencies(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT depends_on_id FROM item_dependencies WHERE item_id = ? ORDER BY depends_on_id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	var deps []string
	for rows.Next() {
		var depID string
		if err := rows.Scan(&depID); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps = append(deps, depID)
	}
	return deps, rows.Err()
}

func (s *SQLiteStore) allDependencies(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, depends_on_id FROM item_dependencies ORDER BY item_id, depends_on_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var itemID, depID string
		if err := rows.Scan(&itemID, &depID); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps[itemID] = append(deps[itemID], depID)
	}
	return deps, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*scheduler.WorkItem, error) {
	item := &scheduler.WorkItem{}
	var waveID, workerID, startDate, endDate sql.NullString
	var duration sql.NullInt64

	err := sc.Scan(&item.ID, &item.Name, &waveID, &item.Priority, &item.EffortPoints,
		&workerID, &startDate, &endDate, &duration)
	if err != nil {
		return nil, err
	}

	item.WaveID = waveID.String
	item.AssignedWorkerID = workerID.String
	item.DurationDays = int(duration.Int64)

	if item.StartDate, err = parseNullDate(startDate); err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}
	if item.EndDate, err = parseNullDate(endDate); err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}

	return item, nil
}

func parseNullDate(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", v.String, err)
	}
	return d, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullDate(v time.Time) any {
	if v.IsZero() {
		return nil
	}
	return v.Format(dateLayout)
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
