package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// Options describes parameters for opening a history store.
type Options struct {
	Path string // Filesystem path of the sqlite database
}

// Store is the on-disk log of guardian corrections and display topology
// changes. All writes happen on the daemon side; a single connection is
// enough and keeps sqlite locking simple.
type Store struct {
	db   *sql.DB
	path string
}

// Correction is one applied window shrink.
type Correction struct {
	ID        int64
	At        time.Time
	WindowID  uint32
	Class     string
	Title     string
	Overlap   int
	OldHeight int
	NewHeight int
}

// TopologyEvent records a display layout change and the barrier that
// resulted from it.
type TopologyEvent struct {
	ID       int64
	At       time.Time
	Displays int
	Active   bool
	X        int
	Y        int
	Width    int
	Height   int
}

// NotFoundError indicates a requested record does not exist.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// IsNotFound returns true when err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS corrections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		window_id INTEGER NOT NULL,
		class TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		overlap INTEGER NOT NULL,
		old_height INTEGER NOT NULL,
		new_height INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_corrections_at ON corrections(at)`,
	`CREATE TABLE IF NOT EXISTS topology_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		displays INTEGER NOT NULL,
		active INTEGER NOT NULL,
		x INTEGER NOT NULL DEFAULT 0,
		y INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_topology_at ON topology_events(at)`,
}

// Open initialises the history store at the given path, creating parent
// directories and the schema as needed.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("history: database path required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("history: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite store: %w", err)
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:   db,
		path: opts.Path,
	}, nil
}

// Close finalises the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the filesystem path of the backing database.
func (s *Store) Path() string {
	return s.path
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", int(defaultBusyTimeout.Milliseconds())),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("history: apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin schema transaction: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("history: apply schema statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit schema transaction: %w", err)
	}

	return nil
}

// RecordCorrection appends one correction to the log. The At field
// defaults to the current time when zero.
func (s *Store) RecordCorrection(ctx context.Context, c Correction) error {
	at := c.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corrections (at, window_id, class, title, overlap, old_height, new_height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), c.WindowID, c.Class, c.Title, c.Overlap, c.OldHeight, c.NewHeight,
	)
	if err != nil {
		return fmt.Errorf("history: insert correction: %w", err)
	}
	return nil
}

// RecordTopology appends one display layout change to the log.
func (s *Store) RecordTopology(ctx context.Context, ev TopologyEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	active := 0
	if ev.Active {
		active = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topology_events (at, displays, active, x, y, width, height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), ev.Displays, active, ev.X, ev.Y, ev.Width, ev.Height,
	)
	if err != nil {
		return fmt.Errorf("history: insert topology event: %w", err)
	}
	return nil
}

// RecentCorrections returns up to limit corrections, newest first.
func (s *Store) RecentCorrections(ctx context.Context, limit int) ([]Correction, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, window_id, class, title, overlap, old_height, new_height
		 FROM corrections ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list corrections: %w", err)
	}
	defer rows.Close()

	result := make([]Correction, 0, limit)
	for rows.Next() {
		var c Correction
		var at string
		if err := rows.Scan(&c.ID, &at, &c.WindowID, &c.Class, &c.Title, &c.Overlap, &c.OldHeight, &c.NewHeight); err != nil {
			return nil, fmt.Errorf("history: scan correction: %w", err)
		}
		c.At = parseStoredTime(at)
		result = append(result, c)
	}
	return result, rows.Err()
}

// LastCorrection returns the most recent correction, or a NotFoundError
// when the log is empty.
func (s *Store) LastCorrection(ctx context.Context) (Correction, error) {
	var c Correction
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, at, window_id, class, title, overlap, old_height, new_height
		 FROM corrections ORDER BY id DESC LIMIT 1`,
	).Scan(&c.ID, &at, &c.WindowID, &c.Class, &c.Title, &c.Overlap, &c.OldHeight, &c.NewHeight)
	if err == sql.ErrNoRows {
		return Correction{}, NotFoundError{Entity: "correction"}
	}
	if err != nil {
		return Correction{}, fmt.Errorf("history: last correction: %w", err)
	}
	c.At = parseStoredTime(at)
	return c, nil
}

// RecentTopology returns up to limit topology events, newest first.
func (s *Store) RecentTopology(ctx context.Context, limit int) ([]TopologyEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, displays, active, x, y, width, height
		 FROM topology_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list topology events: %w", err)
	}
	defer rows.Close()

	result := make([]TopologyEvent, 0, limit)
	for rows.Next() {
		var ev TopologyEvent
		var at string
		var active int
		if err := rows.Scan(&ev.ID, &at, &ev.Displays, &active, &ev.X, &ev.Y, &ev.Width, &ev.Height); err != nil {
			return nil, fmt.Errorf("history: scan topology event: %w", err)
		}
		ev.At = parseStoredTime(at)
		ev.Active = active != 0
		result = append(result, ev)
	}
	return result, rows.Err()
}

// Prune deletes records older than the given retention window from both
// tables and reports how many rows were removed. A non-positive window
// disables pruning.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339Nano)

	var total int64
	for _, table := range []string{"corrections", "topology_events"} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE at < ?`, table), cutoff,
		)
		if err != nil {
			return total, fmt.Errorf("history: prune %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("history: prune %s rows affected: %w", table, err)
		}
		total += n
	}

	return total, nil
}

func parseStoredTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}
