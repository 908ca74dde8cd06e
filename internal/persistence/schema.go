package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS waves (
		id TEXT PRIMARY KEY,
		wave_order INTEGER NOT NULL CHECK (wave_order > 0)
	);

	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		wave_id TEXT,
		priority INTEGER NOT NULL DEFAULT 0,
		effort_points INTEGER NOT NULL,
		assigned_worker_id TEXT,
		start_date TEXT,
		end_date TEXT,
		duration_days INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (wave_id) REFERENCES waves(id) ON DELETE SET NULL,
		FOREIGN KEY (assigned_worker_id) REFERENCES workers(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS item_dependencies (
		item_id TEXT NOT NULL,
		depends_on_id TEXT NOT NULL,
		PRIMARY KEY (item_id, depends_on_id),
		FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
		FOREIGN KEY (depends_on_id) REFERENCES items(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_item_dependencies_item_id ON item_dependencies(item_id);

	CREATE TABLE IF NOT EXISTS warnings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		wave_id TEXT,
		wave_order INTEGER NOT NULL DEFAULT 0,
		item_ids TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
