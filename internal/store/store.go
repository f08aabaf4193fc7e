// Package store handles SQLite persistence for plans and steps.
//
// All write operations run inside a single transaction and preserve the
// ordering and status invariants: step orders within a plan form a contiguous
// range starting at zero, and a step is done iff it carries a result.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite database handle.
type Store struct {
	db *sql.DB
}

// timeFormat is how timestamps are stored: UTC ISO-8601. Lexicographic order
// matches chronological order, so created_at comparisons work in SQL.
const timeFormat = time.RFC3339

const schema = `
	PRAGMA journal_mode = WAL;

	CREATE TABLE IF NOT EXISTS plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
		directory TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		acceptance_criteria TEXT,
		step_references TEXT,
		status TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'inprogress', 'done')),
		result TEXT,
		step_order INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (plan_id, step_order)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_plan ON steps(plan_id);
	CREATE INDEX IF NOT EXISTS idx_plans_directory ON plans(directory);

	CREATE VIEW IF NOT EXISTS plan_summaries AS
		SELECT
			p.id, p.title, p.description, p.status, p.directory,
			p.created_at, p.updated_at,
			COUNT(s.id) AS total_steps,
			COALESCE(SUM(CASE WHEN s.status = 'done' THEN 1 ELSE 0 END), 0) AS completed_steps,
			COALESCE(SUM(CASE WHEN s.status <> 'done' THEN 1 ELSE 0 END), 0) AS pending_steps
		FROM plans p
		LEFT JOIN steps s ON s.plan_id = p.id
		WHERE p.status = 'active'
		GROUP BY p.id;

	CREATE VIEW IF NOT EXISTS all_plan_summaries AS
		SELECT
			p.id, p.title, p.description, p.status, p.directory,
			p.created_at, p.updated_at,
			COUNT(s.id) AS total_steps,
			COALESCE(SUM(CASE WHEN s.status = 'done' THEN 1 ELSE 0 END), 0) AS completed_steps,
			COALESCE(SUM(CASE WHEN s.status <> 'done' THEN 1 ELSE 0 END), 0) AS pending_steps
		FROM plans p
		LEFT JOIN steps s ON s.plan_id = p.id
		GROUP BY p.id;
`

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// busy_timeout lets concurrent callers (each with their own connection)
	// wait out the WAL writer instead of failing with SQLITE_BUSY, and
	// _txlock=immediate takes the write lock at BEGIN so a transaction that
	// reads before writing cannot hit a busy deadlock on the lock upgrade,
	// where busy_timeout does not apply.
	dsn := dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s, err := initialize(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func initialize(db *sql.DB) (*Store, error) {
	// A single connection keeps the foreign_keys pragma in force for every
	// statement; database/sql would otherwise hand out fresh connections
	// with the pragma unset.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate applies the single additive migration: databases created before
// results existed lack the steps.result column.
func (s *Store) migrate() error {
	hasResult, err := s.hasColumn("steps", "result")
	if err != nil {
		return fmt.Errorf("failed to inspect steps table: %w", err)
	}
	if hasResult {
		return nil
	}
	if _, err := s.db.Exec("ALTER TABLE steps ADD COLUMN result TEXT"); err != nil {
		return fmt.Errorf("failed to add steps.result column: %w", err)
	}
	return nil
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced queries (tests).
func (s *Store) DB() *sql.DB {
	return s.db
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// joinReferences serializes references as a comma-joined string, NULL when
// empty. The on-disk format predates this implementation; a reference
// containing a comma is split apart on read.
func joinReferences(refs []string) *string {
	if len(refs) == 0 {
		return nil
	}
	joined := strings.Join(refs, ",")
	return &joined
}

func splitReferences(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	return strings.Split(*raw, ",")
}
