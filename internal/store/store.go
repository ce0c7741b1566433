// Package store is the SQLite persistence layer for LEO.
//
// A single database file holds the venture budgets read by the agent
// factory, the append-only instantiation audit log, the versioned protocol
// sections, and the live data the document generator renders (agents,
// sub-agents, issue patterns, retrospectives, vision gaps).
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNoProtocol is returned by CurrentProtocol when no protocol is active.
var ErrNoProtocol = errors.New("store: no active protocol")

// timeFormat is how timestamps are stored.
const timeFormat = time.RFC3339Nano

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration: ~/.leo.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".leo")}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the LEO database.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (or creates) the database in cfg.DataDir.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "leo.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, "leo.db")
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS venture_token_budgets (
			venture_id       TEXT PRIMARY KEY,
			budget_allocated INTEGER NOT NULL DEFAULT 0,
			budget_remaining INTEGER NOT NULL DEFAULT 0,
			updated_at       TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS venture_phase_budgets (
			venture_id       TEXT NOT NULL,
			phase            INTEGER NOT NULL,
			budget_allocated INTEGER NOT NULL DEFAULT 0,
			budget_remaining INTEGER NOT NULL DEFAULT 0,
			updated_at       TEXT NOT NULL,
			PRIMARY KEY (venture_id, phase)
		);

		CREATE TABLE IF NOT EXISTS agent_audit_log (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			event_type       TEXT NOT NULL,
			severity         TEXT NOT NULL,
			agent_id         TEXT NOT NULL,
			venture_id       TEXT,
			status           TEXT NOT NULL,
			budget_remaining INTEGER,
			budget_source    TEXT NOT NULL DEFAULT '',
			error            TEXT NOT NULL DEFAULT '',
			created_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_audit_venture ON agent_audit_log(venture_id, id);

		CREATE TABLE IF NOT EXISTS protocols (
			id         TEXT PRIMARY KEY,
			version    TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			active     INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS protocol_sections (
			id           TEXT NOT NULL,
			protocol_id  TEXT NOT NULL REFERENCES protocols(id) ON DELETE CASCADE,
			section_type TEXT NOT NULL,
			title        TEXT NOT NULL,
			content      TEXT NOT NULL,
			order_index  INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (protocol_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_sections_protocol ON protocol_sections(protocol_id, order_index);

		CREATE TABLE IF NOT EXISTS leo_agents (
			agent_code       TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			responsibilities TEXT NOT NULL DEFAULT '',
			total_percentage INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS leo_sub_agents (
			code            TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			priority        INTEGER NOT NULL DEFAULT 0,
			activation_type TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS issue_patterns (
			pattern_id       TEXT PRIMARY KEY,
			category         TEXT NOT NULL DEFAULT '',
			severity         TEXT NOT NULL DEFAULT '',
			issue_summary    TEXT NOT NULL DEFAULT '',
			occurrence_count INTEGER NOT NULL DEFAULT 0,
			trend            TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS retrospectives (
			sd_id          TEXT PRIMARY KEY,
			title          TEXT NOT NULL DEFAULT '',
			key_learnings  TEXT NOT NULL DEFAULT '[]',
			quality_score  INTEGER NOT NULL DEFAULT 0,
			conducted_date TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS vision_gaps (
			pattern_id    TEXT PRIMARY KEY,
			issue_summary TEXT NOT NULL DEFAULT '',
			severity      TEXT NOT NULL DEFAULT ''
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// now is a package-level var so tests can pin stored timestamps.
var now = func() time.Time { return time.Now().UTC() }
