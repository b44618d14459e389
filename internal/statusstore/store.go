// Package statusstore persists per-example run outcomes in a sqlite
// database so that later runs can filter to previously failed examples and
// order by recorded runtime. Only outcomes are stored — never memoized
// binding values, which do not outlive their example.
package statusstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS examples (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	finished_at TIMESTAMP NOT NULL
);
`

// Store wraps the sqlite database. A store is safe for the sequential use
// the runner makes of it; it holds no in-memory state beyond the handle.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create status store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize status store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record upserts the latest outcome for an example.
func (s *Store) Record(id, status, message string, duration time.Duration) error {
	_, err := s.db.Exec(`
		INSERT INTO examples (id, status, message, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status      = excluded.status,
			message     = excluded.message,
			duration_ms = excluded.duration_ms,
			finished_at = excluded.finished_at
	`, id, status, message, duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record example status: %w", err)
	}
	return nil
}

// FailedIDs returns the set of example ids whose last recorded status is
// failed.
func (s *Store) FailedIDs() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT id FROM examples WHERE status = 'failed'`)
	if err != nil {
		return nil, fmt.Errorf("query failed examples: %w", err)
	}
	defer rows.Close()

	failed := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		failed[id] = true
	}
	return failed, rows.Err()
}

// Durations returns the last recorded runtime per example id.
func (s *Store) Durations() (map[string]time.Duration, error) {
	rows, err := s.db.Query(`SELECT id, duration_ms FROM examples`)
	if err != nil {
		return nil, fmt.Errorf("query example durations: %w", err)
	}
	defer rows.Close()

	durations := make(map[string]time.Duration)
	for rows.Next() {
		var (
			id string
			ms int64
		)
		if err := rows.Scan(&id, &ms); err != nil {
			return nil, err
		}
		durations[id] = time.Duration(ms) * time.Millisecond
	}
	return durations, rows.Err()
}
