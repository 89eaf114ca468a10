// Package audit keeps a durable local record of command invocations and
// admin-panel actions in an embedded SQLite database. Recording failures
// are the caller's to log and ignore: the audit trail must never break
// dispatch.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	KindCommand = "command"
	KindPanel   = "panel"
)

// Store wraps the embedded SQLite database. It uses modernc.org/sqlite
// for CGO-less builds.
type Store struct {
	dbPath string
	db     *sql.DB
}

// NewStore creates a Store pointing to dbPath. Call Init before using it.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Init opens the database, configures pragmas, and ensures the schema.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA synchronous=NORMAL;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS invocations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    kind       TEXT NOT NULL,
    guild_id   TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    name       TEXT NOT NULL,
    status     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocations_guild ON invocations(guild_id, created_at);
`); err != nil {
		_ = db.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Invocation is one recorded command or panel action.
type Invocation struct {
	ID        int64
	Kind      string
	GuildID   string
	UserID    string
	Name      string
	Status    string
	Detail    string
	CreatedAt time.Time
}

func (s *Store) record(kind, guildID, userID, name, status, detail string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(
		`INSERT INTO invocations (kind, guild_id, user_id, name, status, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		kind, guildID, userID, name, status, detail, time.Now().UTC(),
	)
	return err
}

// RecordCommand records one chat-command invocation.
func (s *Store) RecordCommand(guildID, userID, name, status, detail string) error {
	return s.record(KindCommand, guildID, userID, name, status, detail)
}

// RecordPanelAction records one admin-panel action and its outcome.
func (s *Store) RecordPanelAction(guildID, userID, action, status, detail string) error {
	return s.record(KindPanel, guildID, userID, action, status, detail)
}

// RecentInvocations returns up to limit invocations, newest first.
func (s *Store) RecentInvocations(limit int) ([]Invocation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, kind, guild_id, user_id, name, status, detail, created_at
         FROM invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.Kind, &inv.GuildID, &inv.UserID, &inv.Name, &inv.Status, &inv.Detail, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
