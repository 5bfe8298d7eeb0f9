package services

import (
	"fmt"

	"little-realm/server/errs"
	"little-realm/server/models"
	"little-realm/server/templates"
)

// Factory builds entities from templates into a store.
type Factory struct {
	store *EntityStore
	lib   *templates.Library
}

// NewFactory creates a factory and registers the library's rooms with store.
func NewFactory(store *EntityStore, lib *templates.Library) *Factory {
	for _, room := range lib.Rooms {
		store.AddRoom(room)
	}
	return &Factory{store: store, lib: lib}
}

// HasLifeForm reports whether a lifeform template exists for key.
func (f *Factory) HasLifeForm(key string) bool {
	_, ok := f.lib.LifeForms[key]
	return ok
}

// CreateItem builds the item template key.
func (f *Factory) CreateItem(key string) (int64, error) {
	tpl, ok := f.lib.Items[key]
	if !ok {
		return 0, errs.New(errs.NotFound, fmt.Sprintf("item template %s does not exist", key))
	}
	stats, err := models.NewItemStats(tpl.Stats, tpl.Weight)
	if err != nil {
		return 0, fmt.Errorf("item template %s: %w", key, err)
	}
	return f.store.Create(tpl.Kind, Fields{
		Name:       tpl.Name,
		Attributes: copyAttributes(tpl.Attributes),
		Item: &models.Item{
			Description: tpl.Description,
			Slot:        tpl.Slot,
			Stats:       stats,
			Sprite:      tpl.Sprite,
		},
	})
}

// CreateLifeForm builds the lifeform template key along with its starting
// inventory, equipping the entries marked equipped.
func (f *Factory) CreateLifeForm(key string) (int64, error) {
	tpl, ok := f.lib.LifeForms[key]
	if !ok {
		return 0, errs.New(errs.NotFound, fmt.Sprintf("lifeform template %s does not exist", key))
	}
	stats, err := models.NewStats(tpl.Stats)
	if err != nil {
		return 0, fmt.Errorf("lifeform template %s: %w", key, err)
	}

	capacity := f.store.inventoryCapacity
	if len(tpl.Inventory) > capacity {
		capacity = len(tpl.Inventory)
	}

	id, err := f.store.Create(models.KindLifeForm, Fields{
		Name:       tpl.Name,
		Attributes: copyAttributes(tpl.Attributes),
		LifeForm: &models.LifeForm{
			Stats:      stats,
			Inventory:  models.NewInventory(capacity),
			MoveTime:   tpl.MoveTime,
			AttackTime: tpl.AttackTime,
			Sprite:     tpl.Sprite,
		},
	})
	if err != nil {
		return 0, err
	}

	ent, _ := f.store.LifeForm(id)
	inv := ent.LifeForm.Inventory
	for i, entry := range tpl.Inventory {
		if entry == nil {
			continue
		}
		itemID, err := f.CreateItem(entry.Item)
		if err != nil {
			f.store.RemoveWithInventory(id)
			return 0, err
		}
		inv.Slots[i] = itemID
		if entry.Equipped {
			if _, err := inv.EquipItem(f.store, itemID); err != nil {
				f.store.RemoveWithInventory(id)
				return 0, fmt.Errorf("lifeform template %s slot %d: %w", key, i, err)
			}
		}
	}
	return id, nil
}

func copyAttributes(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
