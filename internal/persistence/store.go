// Package persistence stores the backlog snapshot and the planned schedule
// in SQLite. The planning engine itself never touches the database: the
// store loads a full snapshot before a run and persists the run's result in
// a single transaction afterwards, so a crash mid-write cannot leave a
// half-updated schedule behind.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristath/waveplan/internal/scheduler"
	_ "modernc.org/sqlite"
)

// Store defines the persistence interface for backlog snapshots and
// planning results.
type Store interface {
	// Backlog CRUD
	SaveWave(ctx context.Context, wave scheduler.Wave) error
	SaveWorker(ctx context.Context, worker scheduler.Worker) error
	SaveItem(ctx context.Context, item *scheduler.WorkItem) error
	GetItem(ctx context.Context, itemID string) (*scheduler.WorkItem, error)
	ListItems(ctx context.Context) ([]*scheduler.WorkItem, error)

	// Planning run boundary
	LoadSnapshot(ctx context.Context, cfg scheduler.Config) (*scheduler.Snapshot, error)
	SaveSchedule(ctx context.Context, result *scheduler.Result) error
	ListWarnings(ctx context.Context) ([]scheduler.Warning, error)

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and
// busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	// Note: modernc.org/sqlite doesn't support _foreign_keys in the
	// connection string, hence the PRAGMA below.
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return initStore(ctx, db)
}

// NewMemoryStore creates an in-memory SQLite store for testing.
// Uses a shared cache so multiple connections see the same database.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	connStr := "file::memory:?mode=memory&cache=shared"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	return initStore(ctx, db)
}

func initStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Snapshot loading runs three concurrent reads, plus one spare
	// connection for writers.
	db.SetMaxOpenConns(4)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
