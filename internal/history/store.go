// Package history persists refresh cycle outcomes to a local sqlite
// database so `earthwall history` and the control RPC can report past
// cycles across daemon restarts.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// maxEntries caps the table; the oldest rows beyond it are trimmed on
// every insert.
const maxEntries = 200

// Outcome values recorded for a cycle.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Cycle is one recorded fetch+apply attempt.
type Cycle struct {
	ID        int64
	StartedAt time.Time
	Outcome   string
	Message   string
}

// Store is a sqlite-backed cycle log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// The daemon is the single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	message TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends a cycle outcome and trims the table to its cap.
func (s *Store) Record(startedAt time.Time, outcome, message string) error {
	if _, err := s.db.Exec(
		`INSERT INTO cycles (started_at, outcome, message) VALUES (?, ?, ?)`,
		startedAt.Unix(), outcome, message,
	); err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	_, err := s.db.Exec(
		`DELETE FROM cycles WHERE id NOT IN (SELECT id FROM cycles ORDER BY id DESC LIMIT ?)`,
		maxEntries,
	)
	if err != nil {
		return fmt.Errorf("trim cycle history: %w", err)
	}
	return nil
}

// Recent returns up to limit cycles, newest first.
func (s *Store) Recent(limit int) ([]Cycle, error) {
	if limit <= 0 || limit > maxEntries {
		limit = maxEntries
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, outcome, message FROM cycles ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycle history: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var ts int64
		if err := rows.Scan(&c.ID, &ts, &c.Outcome, &c.Message); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		c.StartedAt = time.Unix(ts, 0)
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
