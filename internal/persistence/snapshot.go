package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/waveplan/internal/scheduler"
)

// LoadSnapshot reads the full backlog (items with their dependencies, waves,
// workers) and attaches the given planning config. The three reads are
// independent and run concurrently.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, cfg scheduler.Config) (*scheduler.Snapshot, error) {
	snap := &scheduler.Snapshot{Config: cfg}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.ListItems(ctx)
		if err != nil {
			return fmt.Errorf("loading items: %w", err)
		}
		snap.Items = items
		return nil
	})

	g.Go(func() error {
		waves, err := s.listWaves(ctx)
		if err != nil {
			return fmt.Errorf("loading waves: %w", err)
		}
		snap.Waves = waves
		return nil
	})

	g.Go(func() error {
		workers, err := s.listWorkers(ctx)
		if err != nil {
			return fmt.Errorf("loading workers: %w", err)
		}
		snap.Workers = workers
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// SaveSchedule persists a planning result in one transaction: item dates
// and assignments plus the run's warnings, replacing the previous run's
// warnings. Everything or nothing.
func (s *SQLiteStore) SaveSchedule(ctx context.Context, result *scheduler.Result) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range result.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE items SET
				assigned_worker_id = ?,
				start_date = ?,
				end_date = ?,
				duration_days = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, nullString(item.AssignedWorkerID), nullDate(item.StartDate),
			nullDate(item.EndDate), nullInt(item.DurationDays), item.ID)
		if err != nil {
			return fmt.Errorf("failed to update item %s: %w", item.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update of item %s: %w", item.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("planned item %s does not exist in the store", item.ID)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM warnings`); err != nil {
		return fmt.Errorf("failed to clear previous warnings: %w", err)
	}

	for _, w := range result.Warnings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO warnings (kind, wave_id, wave_order, item_ids, message)
			VALUES (?, ?, ?, ?, ?)
		`, string(w.Kind), nullString(w.WaveID), w.WaveOrder,
			strings.Join(w.ItemIDs, ","), w.Message)
		if err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}

	return nil
}

// ListWarnings returns the warnings of the most recent persisted run.
func (s *SQLiteStore) ListWarnings(ctx context.Context) ([]scheduler.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, wave_id, wave_order, item_ids, message FROM warnings ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	var warnings []scheduler.Warning
	for rows.Next() {
		var w scheduler.Warning
		var kind, itemIDs string
		var waveID sql.NullString
		if err := rows.Scan(&kind, &waveID, &w.WaveOrder, &itemIDs, &w.Message); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		w.Kind = scheduler.WarningKind(kind)
		w.WaveID = waveID.String
		if itemIDs != "" {
			w.ItemIDs = strings.Split(itemIDs, ",")
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

func (s *SQLiteStore) listWaves(ctx context.Context) ([]scheduler.Wave, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, wave_order FROM waves ORDER BY wave_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waves []scheduler.Wave
	for rows.Next() {
		var w scheduler.Wave
		if err := rows.Scan(&w.ID, &w.Order); err != nil {
			return nil, err
		}
		waves = append(waves, w)
	}
	return waves, rows.Err()
}

func (s *SQLiteStore) listWorkers(ctx context.Context) ([]scheduler.Worker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM workers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []scheduler.Worker
	for rows.Next() {
		var w scheduler.Worker
		if err := rows.Scan(&w.ID); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}
