package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"little-realm/server/models"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore keeps character saves in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; the game worker is the only caller anyway.
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS character_saves (
    slot TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveCharacter upserts save under slot.
func (s *SQLiteStore) SaveCharacter(slot string, save *models.CharacterSave) error {
	data, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("marshal character %s: %w", slot, err)
	}
	_, err = s.db.Exec(`
INSERT INTO character_saves (slot, name, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
		slot, save.Name, string(data), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("save character %s: %w", slot, err)
	}
	return nil
}

// LoadCharacter loads the save stored under slot.
func (s *SQLiteStore) LoadCharacter(slot string) (*models.CharacterSave, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM character_saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character slot %s: %w", slot, ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load character %s: %w", slot, err)
	}

	var save models.CharacterSave
	if err := json.Unmarshal([]byte(data), &save); err != nil {
		return nil, fmt.Errorf("unmarshal character %s: %w", slot, err)
	}
	return &save, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
