// Package store persists REPL evaluation history and named object
// snapshots to SQLite (modernc.org/sqlite, a pure-Go driver registered
// under database/sql as "sqlite"), so a REPL session's history survives
// across invocations when `cmd/ether -history <path>` is set.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding REPL history and named
// snapshots.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	source TEXT NOT NULL,
	result TEXT NOT NULL,
	ran_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	image BLOB NOT NULL,
	saved_at INTEGER NOT NULL
);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HistoryEntry is one recorded REPL evaluation.
type HistoryEntry struct {
	Session string
	Source  string
	Result  string
	RanAt   time.Time
}

// AppendHistory records one evaluation.
func (s *Store) AppendHistory(e HistoryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO history (session, source, result, ran_at) VALUES (?, ?, ?, ?)`,
		e.Session, e.Source, e.Result, e.RanAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: append history: %w", err)
	}
	return nil
}

// History returns the most recent n entries for session, oldest first.
func (s *Store) History(session string, n int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT source, result, ran_at FROM history
		 WHERE session = ? ORDER BY id DESC LIMIT ?`,
		session, n,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ranAt int64
		if err := rows.Scan(&e.Source, &e.Result, &ranAt); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		e.Session = session
		e.RanAt = time.Unix(ranAt, 0)
		out = append(out, e)
	}
	// reverse into oldest-first order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

// SaveSnapshot stores a named image blob, replacing any prior snapshot
// under the same name.
func (s *Store) SaveSnapshot(name string, image []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (name, image, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET image = excluded.image, saved_at = excluded.saved_at`,
		name, image, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save snapshot %s: %w", name, err)
	}
	return nil
}

// LoadSnapshot retrieves a named image blob.
func (s *Store) LoadSnapshot(name string) ([]byte, error) {
	var image []byte
	err := s.db.QueryRow(`SELECT image FROM snapshots WHERE name = ?`, name).Scan(&image)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot %s: %w", name, err)
	}
	return image, nil
}
