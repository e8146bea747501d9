// Package session provides SQLite-backed persistence for the client session:
// the bearer token and the last-known user profile, read at startup.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pulseboard/pulseboard/internal/models"
)

// Fixed keys under which client state is persisted.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store wraps a SQLite database holding session key/value state.
type Store struct {
	db *sql.DB
}

// Open opens or creates the session database at dbPath.
// An empty dbPath defaults to $TMPDIR/pulseboard/session.db.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "pulseboard", "session.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS session (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	return err
}

// Get returns the value stored under key, or "" when absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session key %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO session (key, value, updated_at)
		VALUES (?,?,?)`,
		key, value, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to write session key %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the session.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session key %q: %w", key, err)
	}
	return nil
}

// Token returns the persisted bearer token, or "" when not logged in.
// Satisfies backend.TokenProvider.
func (s *Store) Token() string {
	token, err := s.Get(KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// SetToken persists the bearer token.
func (s *Store) SetToken(token string) error {
	return s.Set(KeyToken, token)
}

// User returns the last-known user profile, or nil when none is stored.
func (s *Store) User() (*models.User, error) {
	raw, err := s.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &user, nil
}

// SetUser persists the user profile.
func (s *Store) SetUser(user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.Set(KeyUser, string(raw))
}
