package services

import (
	"fmt"
	"sort"

	"little-realm/server/errs"
	"little-realm/server/models"
	"little-realm/server/persistence"
)

// Fields are the caller-supplied parts of a new entity. The payload matching
// the kind may be left nil to get an empty default.
type Fields struct {
	Name       string
	Attributes map[string]string
	LifeForm   *models.LifeForm
	Item       *models.Item
}

// EntityStore owns every entity in the running world. It is not safe for
// concurrent use; the game worker is its only caller.
type EntityStore struct {
	entities          map[int64]*models.Entity
	rooms             map[string]models.Room
	lastID            int64
	db                persistence.Storage
	inventoryCapacity int
}

// NewEntityStore creates an empty store. db may be nil when persistence is not needed.
func NewEntityStore(db persistence.Storage, inventoryCapacity int) *EntityStore {
	if inventoryCapacity <= 0 {
		inventoryCapacity = models.DefaultCapacity
	}
	return &EntityStore{
		entities:          make(map[int64]*models.Entity),
		rooms:             make(map[string]models.Room),
		db:                db,
		inventoryCapacity: inventoryCapacity,
	}
}

// Create inserts a new entity and returns its id. Ids are never reused: the
// next id is one past the highest ever assigned.
func (s *EntityStore) Create(kind models.Kind, f Fields) (int64, error) {
	if !kind.Valid() {
		return 0, errs.New(errs.InvalidVariant, fmt.Sprintf("%q is not a known entity kind", kind))
	}

	ent := &models.Entity{
		Name:       f.Name,
		Kind:       kind,
		Attributes: f.Attributes,
	}
	if ent.Name == "" {
		ent.Name = "unnamed_" + string(kind)
	}

	if kind == models.KindLifeForm {
		if f.Item != nil {
			return 0, errs.New(errs.InvalidVariant, "a lifeform cannot carry an item payload")
		}
		lf := f.LifeForm
		if lf == nil {
			lf = &models.LifeForm{}
		}
		if lf.Stats == nil {
			lf.Stats, _ = models.NewStats(nil)
		}
		if lf.Inventory == nil {
			lf.Inventory = models.NewInventory(s.inventoryCapacity)
		}
		ent.LifeForm = lf
	} else {
		if f.LifeForm != nil {
			return 0, errs.New(errs.InvalidVariant, fmt.Sprintf("a %s cannot carry a lifeform payload", kind))
		}
		it := f.Item
		if it == nil {
			it = &models.Item{}
		}
		ent.Item = it
	}

	s.lastID++
	ent.ID = s.lastID
	s.entities[ent.ID] = ent
	return ent.ID, nil
}

// Get returns the entity with id.
func (s *EntityStore) Get(id int64) (*models.Entity, error) {
	ent, ok := s.entities[id]
	if !ok {
		return nil, errs.New(errs.NotFound, fmt.Sprintf("entity %d does not exist", id))
	}
	return ent, nil
}

// LifeForm returns the entity with id if it is a lifeform.
func (s *EntityStore) LifeForm(id int64) (*models.Entity, error) {
	ent, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if ent.LifeForm == nil {
		return nil, errs.New(errs.NotFound, fmt.Sprintf("entity %d is not a lifeform", id))
	}
	return ent, nil
}

// Item returns the entity with id if it is an item.
func (s *EntityStore) Item(id int64) (*models.Entity, error) {
	ent, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if ent.Item == nil {
		return nil, errs.New(errs.NotFound, fmt.Sprintf("entity %d is not an item", id))
	}
	return ent, nil
}

// Remove deletes the entity and clears every inventory or equip slot that
// referenced it.
func (s *EntityStore) Remove(id int64) error {
	if _, ok := s.entities[id]; !ok {
		return errs.New(errs.NotFound, fmt.Sprintf("entity %d does not exist", id))
	}
	delete(s.entities, id)
	for _, ent := range s.entities {
		if ent.LifeForm != nil {
			ent.LifeForm.Inventory.Forget(id)
		}
	}
	return nil
}

// RemoveWithInventory deletes a lifeform together with every item it holds.
func (s *EntityStore) RemoveWithInventory(id int64) error {
	ent, err := s.LifeForm(id)
	if err != nil {
		return err
	}
	for _, itemID := range ent.LifeForm.Inventory.Items() {
		delete(s.entities, itemID)
	}
	return s.Remove(id)
}

// EntitiesInRoom returns the ids of lifeforms currently in room, ascending.
func (s *EntityStore) EntitiesInRoom(room string) []int64 {
	var ids []int64
	for id, ent := range s.entities {
		if ent.LifeForm != nil && ent.LifeForm.CurrentRoom == room {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of live entities.
func (s *EntityStore) Len() int {
	return len(s.entities)
}

// AddRoom registers a room.
func (s *EntityStore) AddRoom(room models.Room) {
	s.rooms[room.Name] = room
}

// Room returns a registered room. Unregistered names still work as lookup
// keys; they just have no contents.
func (s *EntityStore) Room(name string) models.Room {
	if room, ok := s.rooms[name]; ok {
		return room
	}
	return models.Room{Name: name}
}
