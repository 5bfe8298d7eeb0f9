package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"little-realm/server/logger"
	"little-realm/server/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles character persistence using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS character_saves (
		slot TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		current_room TEXT NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SaveCharacter upserts save under slot
func (ps *PostgresStore) SaveCharacter(slot string, save *models.CharacterSave) error {
	data, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal character %s: %w", slot, err)
	}

	query := `
	INSERT INTO character_saves (slot, name, current_room, data)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (slot)
	DO UPDATE SET
		name = $2, current_room = $3, data = $4,
		updated_at = NOW()
	`

	if _, err := ps.db.Exec(query, slot, save.Name, save.CurrentRoom, string(data)); err != nil {
		return fmt.Errorf("failed to save character %s: %w", slot, err)
	}
	return nil
}

// LoadCharacter loads the save stored under slot
func (ps *PostgresStore) LoadCharacter(slot string) (*models.CharacterSave, error) {
	var data string
	err := ps.db.QueryRow(`SELECT data FROM character_saves WHERE slot = $1`, slot).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("character slot %s: %w", slot, ErrSlotNotFound)
		}
		return nil, fmt.Errorf("failed to load character %s: %w", slot, err)
	}

	var save models.CharacterSave
	if err := json.Unmarshal([]byte(data), &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character %s: %w", slot, err)
	}
	return &save, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	logger.Log.Info("Closing database connection...")
	return ps.db.Close()
}
