package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"little-realm/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Characters map[string]json.RawMessage `json:"characters"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Characters: make(map[string]json.RawMessage),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Characters == nil {
		js.data.Characters = make(map[string]json.RawMessage)
	}
	return nil
}

// saveToFile writes through a temp file so a crash never leaves half a database.
func (js *JSONStore) saveToFile() error {
	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SaveCharacter stores save under slot, replacing any earlier save.
func (js *JSONStore) SaveCharacter(slot string, save *models.CharacterSave) error {
	raw, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal character %s: %w", slot, err)
	}

	js.mutex.Lock()
	js.data.Characters[slot] = raw
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadCharacter loads the save stored under slot.
func (js *JSONStore) LoadCharacter(slot string) (*models.CharacterSave, error) {
	js.mutex.RLock()
	raw, exists := js.data.Characters[slot]
	js.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("character slot %s: %w", slot, ErrSlotNotFound)
	}

	var save models.CharacterSave
	if err := json.Unmarshal(raw, &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character %s: %w", slot, err)
	}
	return &save, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
