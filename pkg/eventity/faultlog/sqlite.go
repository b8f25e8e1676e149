package faultlog

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists fault records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite fault journal.
// The path should be a file path (e.g., "./faults.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Create table and index
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS faults (
			id TEXT NOT NULL,
			bus_id TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			callback TEXT NOT NULL,
			event TEXT NOT NULL,
			owner TEXT NOT NULL,
			target TEXT NOT NULL,
			message TEXT NOT NULL,
			stack TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_faults_bus_id
		ON faults(bus_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO faults (id, bus_id, cycle_id, callback, event, owner, target, message, stack, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Bus, rec.Cycle, rec.Callback, rec.Event, rec.Owner, rec.Target,
		rec.Message, rec.Stack, rec.At.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append fault: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(busID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, cycle_id, callback, event, owner, target, message, stack, at
		FROM faults
		WHERE bus_id = ?
		ORDER BY at, id
	`, busID)
	if err != nil {
		return nil, fmt.Errorf("list faults: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec := Record{Bus: busID}
		var at string
		if err := rows.Scan(&rec.ID, &rec.Cycle, &rec.Callback, &rec.Event,
			&rec.Owner, &rec.Target, &rec.Message, &rec.Stack, &at); err != nil {
			return nil, fmt.Errorf("scan fault record: %w", err)
		}
		rec.At, _ = time.Parse(time.RFC3339Nano, at)
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faults: %w", err)
	}

	return recs, nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge(busID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM faults WHERE bus_id = ?
	`, busID)
	if err != nil {
		return fmt.Errorf("purge faults: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
