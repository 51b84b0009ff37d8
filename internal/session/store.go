package session

import (
	"database/sql"
	"encoding/json"
	_ "embed"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/taskdeck/taskdeck/internal/models"
)

//go:embed schema.sql
var schema string

// Keys under which the session credential and cached user live.
const (
	keyToken = "token"
	keyUser  = "user"
)

// Store is the durable client-side key-value storage for the session: the
// bearer token and the serialized user record, plus incidental UI state
// such as the last opened list. Token and user are written and cleared
// together; readers never observe one without the other.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the store database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the store in the application data directory.
func OpenDefault(dataDir string) (*Store, error) {
	return Open(filepath.Join(dataDir, "taskdeck.db"))
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the token and user atomically, overwriting any prior session.
func (s *Store) Save(token string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, kv := range [][2]string{{keyToken, token}, {keyUser, string(data)}} {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the stored token and user, or empty values if either is
// missing or the user record fails to deserialize. Corrupt stored state is
// treated as an absent session, never an error.
func (s *Store) Load() (string, *models.User, error) {
	token, err := s.GetSetting(keyToken)
	if err != nil {
		return "", nil, err
	}
	raw, err := s.GetSetting(keyUser)
	if err != nil {
		return "", nil, err
	}
	if token == "" || raw == "" {
		return "", nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		return "", nil, nil
	}
	return token, &user, nil
}

// Clear removes the token and user together.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM settings WHERE key IN (?, ?)", keyToken, keyUser); err != nil {
		return err
	}
	return tx.Commit()
}

// GetSetting retrieves a setting value by key.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
