// Package storage is the per-guild JSON document store. Each guild owns a
// directory under the store's base path containing independent
// pretty-printed JSON documents (settings.json, users.json, ...).
//
// Reads never fail: a missing, unreadable, or invalid document yields the
// caller's fallback. Updates are read-modify-write with no cross-caller
// coordination; concurrent updates to the same document race and the last
// write wins. That is an accepted limitation of this store, not a bug.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	SettingsFile = "settings.json"
	UsersFile    = "users.json"
)

// Settings is the per-guild configuration document. A nil LogChannelID
// serializes as the literal null the settings file carries by default.
type Settings struct {
	LogChannelID *string `json:"logChannelId"`
}

// UserRecord is one user's entry in users.json.
type UserRecord struct {
	Balance   float64 `json:"balance"`
	LastDaily string  `json:"lastDaily,omitempty"`
}

// Users maps user id to record.
type Users map[string]*UserRecord

// Store reads and writes guild-scoped JSON documents under baseDir.
type Store struct {
	baseDir string

	// mu keeps individual file writes whole. It deliberately does not
	// extend over read-modify-write cycles; see the package comment.
	mu sync.Mutex
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// GuildDir returns the directory owning guildID's documents.
func (s *Store) GuildDir(guildID string) string {
	return filepath.Join(s.baseDir, guildID)
}

func (s *Store) documentPath(guildID, name string) string {
	return filepath.Join(s.baseDir, guildID, name)
}

// Read decodes the named document for guildID. Any failure (missing file,
// unreadable file, invalid JSON) returns fallback.
func Read[T any](s *Store, guildID, name string, fallback T) T {
	data, err := os.ReadFile(s.documentPath(guildID, name))
	if err != nil {
		return fallback
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fallback
	}
	return v
}

// Write overwrites the named document for guildID with a pretty-printed
// serialization of value, creating the guild directory if needed.
func Write[T any](s *Store, guildID, name string, value T) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.GuildDir(guildID), 0o755); err != nil {
		return fmt.Errorf("create guild directory: %w", err)
	}
	if err := os.WriteFile(s.documentPath(guildID, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Update reads the named document (fallback on failure), applies fn, and
// writes the result back, returning it. Not atomic across concurrent
// callers: last write wins.
func Update[T any](s *Store, guildID, name string, fallback T, fn func(T) T) (T, error) {
	next := fn(Read(s, guildID, name, fallback))
	if err := Write(s, guildID, name, next); err != nil {
		return next, err
	}
	return next, nil
}

// EnsureGuild materializes guildID's directory and its settings.json and
// users.json with defaults, preserving existing contents. Idempotent;
// called on ready, on guild join, and on every guild interaction.
func (s *Store) EnsureGuild(guildID string) error {
	if guildID == "" {
		return fmt.Errorf("empty guild id")
	}
	users := Read(s, guildID, UsersFile, Users{})
	if users == nil {
		users = Users{}
	}
	settings := Read(s, guildID, SettingsFile, Settings{})
	if err := Write(s, guildID, UsersFile, users); err != nil {
		return err
	}
	return Write(s, guildID, SettingsFile, settings)
}

// Settings returns guildID's settings, defaults on any read failure.
func (s *Store) Settings(guildID string) Settings {
	return Read(s, guildID, SettingsFile, Settings{})
}

func (s *Store) SetSettings(guildID string, settings Settings) error {
	return Write(s, guildID, SettingsFile, settings)
}

// UserBalance returns the user's balance, 0 when the user is unknown.
func (s *Store) UserBalance(guildID, userID string) float64 {
	users := Read(s, guildID, UsersFile, Users{})
	if rec, ok := users[userID]; ok && rec != nil {
		return rec.Balance
	}
	return 0
}

// SetUserBalance sets the user's balance and returns it.
func (s *Store) SetUserBalance(guildID, userID string, amount float64) (float64, error) {
	_, err := Update(s, guildID, UsersFile, Users{}, func(users Users) Users {
		if users == nil {
			users = Users{}
		}
		rec := users[userID]
		if rec == nil {
			rec = &UserRecord{}
			users[userID] = rec
		}
		rec.Balance = amount
		return users
	})
	return amount, err
}

// AddUserBalance adds delta to the user's balance and returns the result.
func (s *Store) AddUserBalance(guildID, userID string, delta float64) (float64, error) {
	return s.SetUserBalance(guildID, userID, s.UserBalance(guildID, userID)+delta)
}

// UpdateUser applies fn to the user's record inside one users.json
// read-modify-write cycle. fn receives a non-nil record.
func (s *Store) UpdateUser(guildID, userID string, fn func(*UserRecord)) (*UserRecord, error) {
	var out *UserRecord
	_, err := Update(s, guildID, UsersFile, Users{}, func(users Users) Users {
		if users == nil {
			users = Users{}
		}
		rec := users[userID]
		if rec == nil {
			rec = &UserRecord{}
			users[userID] = rec
		}
		fn(rec)
		out = rec
		return users
	})
	return out, err
}
