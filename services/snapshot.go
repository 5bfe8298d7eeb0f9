package services

import (
	"errors"
	"fmt"

	"little-realm/server/errs"
	"little-realm/server/models"
	"little-realm/server/persistence"
)

// Save writes the lifeform id and its items to slot.
func (s *EntityStore) Save(id int64, slot string) error {
	if s.db == nil {
		return errs.New(errs.PersistenceError, "no storage configured")
	}
	save, err := s.snapshot(id)
	if err != nil {
		return err
	}
	if err := s.db.SaveCharacter(slot, save); err != nil {
		return errs.Wrap(errs.PersistenceError, fmt.Sprintf("save slot %s", slot), err)
	}
	return nil
}

// Load rebuilds the lifeform stored in slot with fresh ids and returns its id.
// A missing slot wraps persistence.ErrSlotNotFound.
func (s *EntityStore) Load(slot string) (int64, error) {
	if s.db == nil {
		return 0, errs.New(errs.PersistenceError, "no storage configured")
	}
	save, err := s.db.LoadCharacter(slot)
	if err != nil {
		return 0, errs.Wrap(errs.PersistenceError, fmt.Sprintf("load slot %s", slot), err)
	}
	id, err := s.restore(save)
	if err != nil {
		return 0, errs.Wrap(errs.PersistenceError, fmt.Sprintf("restore slot %s", slot), err)
	}
	return id, nil
}

// IsSlotMissing reports whether err came from loading a slot that was never saved.
func IsSlotMissing(err error) bool {
	return errors.Is(err, persistence.ErrSlotNotFound)
}

func (s *EntityStore) snapshot(id int64) (*models.CharacterSave, error) {
	ent, err := s.LifeForm(id)
	if err != nil {
		return nil, err
	}
	lf := ent.LifeForm
	save := &models.CharacterSave{
		Name:        ent.Name,
		Attributes:  ent.Attributes,
		Stats:       lf.Stats.Clone(),
		CurrentRoom: lf.CurrentRoom,
		X:           lf.X,
		Y:           lf.Y,
		MoveTime:    lf.MoveTime,
		AttackTime:  lf.AttackTime,
		Sprite:      lf.Sprite,
		Inventory:   make([]*models.ItemSave, lf.Inventory.Capacity()),
	}

	for i, itemID := range lf.Inventory.Slots {
		if itemID == 0 {
			continue
		}
		item, err := s.Item(itemID)
		if err != nil {
			return nil, err
		}
		save.Inventory[i] = &models.ItemSave{
			Kind:        item.Kind,
			Name:        item.Name,
			Attributes:  item.Attributes,
			Description: item.Item.Description,
			Slot:        item.Item.Slot,
			Stats:       item.Item.Stats,
			Sprite:      item.Item.Sprite,
		}
	}
	for slot, itemID := range lf.Inventory.Equipped {
		if save.Equipped == nil {
			save.Equipped = make(map[models.EquipSlot]int)
		}
		save.Equipped[slot] = lf.Inventory.IndexOf(itemID)
	}
	return save, nil
}

func (s *EntityStore) restore(save *models.CharacterSave) (id int64, err error) {
	stats, err := models.NewStats(nil)
	if err != nil {
		return 0, err
	}
	for name, v := range save.Stats {
		if !models.Stat(name).Valid() || name == models.StatDMG {
			return 0, errs.New(errs.InvalidStat, fmt.Sprintf("%s is not a valid stat", name))
		}
		stats[name] = v
	}

	capacity := len(save.Inventory)
	if capacity < s.inventoryCapacity {
		capacity = s.inventoryCapacity
	}
	inv := models.NewInventory(capacity)

	var created []int64
	defer func() {
		if err != nil {
			for _, c := range created {
				delete(s.entities, c)
			}
		}
	}()

	for i, is := range save.Inventory {
		if is == nil {
			continue
		}
		itemID, err := s.Create(is.Kind, Fields{
			Name:       is.Name,
			Attributes: is.Attributes,
			Item: &models.Item{
				Description: is.Description,
				Slot:        is.Slot,
				Stats:       is.Stats,
				Sprite:      is.Sprite,
			},
		})
		if err != nil {
			return 0, err
		}
		created = append(created, itemID)
		inv.Slots[i] = itemID
	}

	for slot, index := range save.Equipped {
		if index < 0 || index >= len(inv.Slots) || inv.Slots[index] == 0 {
			return 0, errs.New(errs.ItemNotInInventory, fmt.Sprintf("equipped %s refers to empty slot %d", slot, index))
		}
		if _, err := inv.EquipItemInto(s, inv.Slots[index], slot); err != nil {
			return 0, err
		}
	}

	id, err = s.Create(models.KindLifeForm, Fields{
		Name:       save.Name,
		Attributes: save.Attributes,
		LifeForm: &models.LifeForm{
			Stats:       stats,
			Inventory:   inv,
			CurrentRoom: save.CurrentRoom,
			X:           save.X,
			Y:           save.Y,
			MoveTime:    save.MoveTime,
			AttackTime:  save.AttackTime,
			Sprite:      save.Sprite,
		},
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
