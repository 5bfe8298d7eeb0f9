package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"little-realm/server/logger"
	"little-realm/server/models"
)

// DefaultTemplate is used for characters without a template of their own.
const DefaultTemplate = "default"

// ErrAlreadyActive is returned when logging in a character that is online.
var ErrAlreadyActive = errors.New("character already logged in")

// ErrNotActive is returned for characters that are not online.
var ErrNotActive = errors.New("character is not logged in")

// StartPosition is where brand new characters appear.
type StartPosition struct {
	Room string
	X, Y int
}

// PlayerService tracks which characters are online and moves them in and out
// of the entity store.
type PlayerService struct {
	store   *EntityStore
	factory *Factory
	start   StartPosition
	active  map[string]int64 // character name -> lifeform id
}

// NewPlayerService creates a new player service
func NewPlayerService(store *EntityStore, factory *Factory, start StartPosition) *PlayerService {
	return &PlayerService{
		store:   store,
		factory: factory,
		start:   start,
		active:  make(map[string]int64),
	}
}

// Login brings character into the world from its save slot, or from a
// template when it has never been saved.
func (ps *PlayerService) Login(character string) (*models.Entity, error) {
	if _, ok := ps.active[character]; ok {
		return nil, ErrAlreadyActive
	}

	id, err := ps.store.Load(character)
	switch {
	case err == nil:
		logger.Log.WithField("character", character).Info("Loaded character from save slot")
	case IsSlotMissing(err):
		id, err = ps.createFromTemplate(character)
		if err != nil {
			return nil, err
		}
		logger.Log.WithField("character", character).Info("Created character from template")
	default:
		return nil, err
	}

	ent, err := ps.store.LifeForm(id)
	if err != nil {
		return nil, err
	}
	ent.Name = character
	if ent.LifeForm.CurrentRoom == "" {
		ent.LifeForm.CurrentRoom = ps.start.Room
		ent.LifeForm.X = ps.start.X
		ent.LifeForm.Y = ps.start.Y
	}

	ps.active[character] = id
	logger.Log.WithFields(logrus.Fields{
		"character": character,
		"id":        id,
		"room":      ent.LifeForm.CurrentRoom,
	}).Info("Character logged in")
	return ent, nil
}

func (ps *PlayerService) createFromTemplate(character string) (int64, error) {
	key := strings.ToLower(character)
	if !ps.factory.HasLifeForm(key) {
		key = DefaultTemplate
	}
	return ps.factory.CreateLifeForm(key)
}

// Logout saves character to its slot and removes it and its items from the world.
// The character is removed even when the save fails; the save error is returned.
func (ps *PlayerService) Logout(character string) error {
	id, ok := ps.active[character]
	if !ok {
		return ErrNotActive
	}

	saveErr := ps.store.Save(id, character)
	if saveErr != nil {
		logger.Log.WithError(saveErr).WithField("character", character).Error("Failed to save character on logout")
	}

	delete(ps.active, character)
	if err := ps.store.RemoveWithInventory(id); err != nil {
		return fmt.Errorf("remove %s: %w", character, err)
	}
	logger.Log.WithField("character", character).Info("Character logged out")
	return saveErr
}

// SaveAll writes every online character to its slot.
func (ps *PlayerService) SaveAll() error {
	var errs []error
	for name, id := range ps.active {
		if err := ps.store.Save(id, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActiveID returns the lifeform id of an online character.
func (ps *PlayerService) ActiveID(character string) (int64, bool) {
	id, ok := ps.active[character]
	return id, ok
}

// IsActive reports whether character is online.
func (ps *PlayerService) IsActive(character string) bool {
	_, ok := ps.active[character]
	return ok
}

// ConnectedNames lists online characters in name order.
func (ps *PlayerService) ConnectedNames() []string {
	names := make([]string, 0, len(ps.active))
	for name := range ps.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesInRoom lists online characters currently in room, in name order.
func (ps *PlayerService) NamesInRoom(room string) []string {
	var names []string
	for name, id := range ps.active {
		ent, err := ps.store.LifeForm(id)
		if err != nil {
			continue
		}
		if ent.LifeForm.CurrentRoom == room {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
