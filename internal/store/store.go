// Package store persists user preferences in a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"voxmate/internal/logging"
)

// Preference keys.
const (
	KeyUserLanguage     = "userLanguage"     // language the assistant speaks and answers in
	KeySelectedLanguage = "selectedLanguage" // target language for page translation
	KeyVoiceMode        = "voiceMode"        // whether continuous voice capture is on
)

// Store is a SQLite-backed preference store. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the preference database at the given path, creating the
// parent directory and schema as needed. First run seeds userLanguage from
// the system locale.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}

	// Seed the user language from the system locale on first run only.
	if _, err := s.Get(KeyUserLanguage); errors.Is(err, ErrNotFound) {
		lang := SystemLanguage()
		if err := s.Set(KeyUserLanguage, lang); err != nil {
			return err
		}
		logging.Store("seeded userLanguage=%s from system locale", lang)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ErrNotFound is returned by Get for keys never written.
var ErrNotFound = errors.New("preference not found")

// Get returns the stored value for key, or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return value, nil
}

// Set writes key to value, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

// UserLanguage returns the assistant output language, defaulting to "en".
func (s *Store) UserLanguage() string {
	return s.getOr(KeyUserLanguage, "en")
}

// SetUserLanguage stores the assistant output language.
func (s *Store) SetUserLanguage(lang string) error {
	return s.Set(KeyUserLanguage, lang)
}

// SelectedLanguage returns the translation target language. Falls back to
// the user language when never set explicitly.
func (s *Store) SelectedLanguage() string {
	return s.getOr(KeySelectedLanguage, s.UserLanguage())
}

// SetSelectedLanguage stores the translation target language.
func (s *Store) SetSelectedLanguage(lang string) error {
	return s.Set(KeySelectedLanguage, lang)
}

// VoiceMode reports whether continuous voice capture is enabled.
// Defaults to false.
func (s *Store) VoiceMode() bool {
	return s.getOr(KeyVoiceMode, "off") == "on"
}

// SetVoiceMode stores the voice capture toggle.
func (s *Store) SetVoiceMode(enabled bool) error {
	value := "off"
	if enabled {
		value = "on"
	}
	return s.Set(KeyVoiceMode, value)
}

func (s *Store) getOr(key, fallback string) string {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

// SystemLanguage derives a two-letter language code from the process locale
// environment, falling back to "en".
func SystemLanguage() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := os.Getenv(name)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		// Forms like "es_ES.UTF-8" or "fr-FR".
		code := strings.FieldsFunc(raw, func(r rune) bool {
			return r == '_' || r == '-' || r == '.'
		})
		if len(code) > 0 && len(code[0]) == 2 {
			return strings.ToLower(code[0])
		}
	}
	return "en"
}
