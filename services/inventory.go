package services

import (
	"fmt"

	"little-realm/server/errs"
	"little-realm/server/models"
)

// EquipAt equips the item in the owner's carry slot index.
func (s *EntityStore) EquipAt(ownerID int64, index int) (*models.Entity, error) {
	owner, err := s.LifeForm(ownerID)
	if err != nil {
		return nil, err
	}
	itemID, err := owner.LifeForm.Inventory.ItemAt(index)
	if err != nil {
		return nil, err
	}
	if _, err := owner.LifeForm.Inventory.EquipItem(s, itemID); err != nil {
		return nil, err
	}
	return s.Item(itemID)
}

// Unequip clears slot on the owner and returns the item that was there.
func (s *EntityStore) Unequip(ownerID int64, slot models.EquipSlot) (*models.Entity, error) {
	owner, err := s.LifeForm(ownerID)
	if err != nil {
		return nil, err
	}
	itemID, err := owner.LifeForm.Inventory.UnequipItem(slot)
	if err != nil {
		return nil, err
	}
	return s.Item(itemID)
}

// UnequipAt unequips the item held in the owner's carry slot index.
func (s *EntityStore) UnequipAt(ownerID int64, index int) (*models.Entity, error) {
	owner, err := s.LifeForm(ownerID)
	if err != nil {
		return nil, err
	}
	itemID, err := owner.LifeForm.Inventory.ItemAt(index)
	if err != nil {
		return nil, err
	}
	slot, ok := owner.LifeForm.Inventory.EquippedSlot(itemID)
	if !ok {
		return nil, errs.New(errs.SlotEmpty, fmt.Sprintf("item in slot %d is not equipped", index))
	}
	return s.Unequip(ownerID, slot)
}

// TotalStat returns the owner's base stat plus equipment bonuses.
func (s *EntityStore) TotalStat(ownerID int64, stat models.Stat) (int, error) {
	owner, err := s.LifeForm(ownerID)
	if err != nil {
		return 0, err
	}
	return owner.LifeForm.TotalStat(s, stat)
}

// InventoryEntry summarises one occupied carry slot for the client.
type InventoryEntry struct {
	Index    int    `json:"index"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Graphic  string `json:"graphic"`
	Equipped bool   `json:"equipped"`
}

// InventorySummary lists the owner's occupied carry slots in order.
func (s *EntityStore) InventorySummary(ownerID int64) ([]InventoryEntry, error) {
	owner, err := s.LifeForm(ownerID)
	if err != nil {
		return nil, err
	}
	inv := owner.LifeForm.Inventory
	out := []InventoryEntry{}
	for i, id := range inv.Slots {
		if id == 0 {
			continue
		}
		item, err := s.Item(id)
		if err != nil {
			return nil, err
		}
		out = append(out, InventoryEntry{
			Index:    i,
			ID:       id,
			Name:     item.Name,
			Graphic:  item.Item.Sprite,
			Equipped: inv.IsEquipped(id),
		})
	}
	return out, nil
}
