package persistence

import (
	"errors"

	"little-realm/server/models"
)

// ErrSlotNotFound is returned when a save slot has never been written.
var ErrSlotNotFound = errors.New("save slot not found")

// Storage defines the interface for character persistence. Each character is
// saved under a named slot.
type Storage interface {
	SaveCharacter(slot string, save *models.CharacterSave) error
	LoadCharacter(slot string) (*models.CharacterSave, error)
	Close() error
}
