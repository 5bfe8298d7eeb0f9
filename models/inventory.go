package models

import (
	"fmt"

	"little-realm/server/errs"
)

// DefaultCapacity is the number of carry slots a new inventory gets.
const DefaultCapacity = 8

// EquipSlot names a body location.
type EquipSlot string

const (
	SlotHead      EquipSlot = "head"
	SlotMask      EquipSlot = "mask"
	SlotNeck      EquipSlot = "neck"
	SlotChest     EquipSlot = "chest"
	SlotWrist1    EquipSlot = "wrist1"
	SlotWrist2    EquipSlot = "wrist2"
	SlotRing1     EquipSlot = "ring1"
	SlotRing2     EquipSlot = "ring2"
	SlotIdol      EquipSlot = "idol"
	SlotBelt      EquipSlot = "belt"
	SlotLegs      EquipSlot = "legs"
	SlotBoots     EquipSlot = "boots"
	SlotRightHand EquipSlot = "right_hand"
	SlotLeftHand  EquipSlot = "left_hand"
	SlotRanged    EquipSlot = "ranged"
	SlotAmmo      EquipSlot = "ammo"
)

// EquipSlots lists every recognized slot in display order.
var EquipSlots = []EquipSlot{
	SlotHead, SlotMask, SlotNeck, SlotChest, SlotWrist1, SlotWrist2,
	SlotRing1, SlotRing2, SlotIdol, SlotBelt, SlotLegs, SlotBoots,
	SlotRightHand, SlotLeftHand, SlotRanged, SlotAmmo,
}

// Valid reports whether s is one of EquipSlots.
func (s EquipSlot) Valid() bool {
	for _, slot := range EquipSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ItemLookup resolves an id to an item entity.
type ItemLookup interface {
	Item(id int64) (*Entity, error)
}

// Inventory is an ordered list of carry slots plus the equip slots. It holds
// entity ids only; 0 marks an empty carry slot.
type Inventory struct {
	Slots    []int64             `json:"slots"`
	Equipped map[EquipSlot]int64 `json:"equipped"`
}

// NewInventory creates an empty inventory with the given number of carry slots.
func NewInventory(capacity int) *Inventory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inventory{
		Slots:    make([]int64, capacity),
		Equipped: make(map[EquipSlot]int64),
	}
}

// Capacity returns the number of carry slots.
func (inv *Inventory) Capacity() int {
	return len(inv.Slots)
}

// IndexOf returns the carry slot holding id, or -1.
func (inv *Inventory) IndexOf(id int64) int {
	if id == 0 {
		return -1
	}
	for i, held := range inv.Slots {
		if held == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is in a carry slot.
func (inv *Inventory) Contains(id int64) bool {
	return inv.IndexOf(id) >= 0
}

// Items returns the held ids in slot order, skipping empty slots.
func (inv *Inventory) Items() []int64 {
	var out []int64
	for _, id := range inv.Slots {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// ItemAt returns the id held at index.
func (inv *Inventory) ItemAt(index int) (int64, error) {
	if index < 0 || index >= len(inv.Slots) {
		return 0, errs.New(errs.NotFound, fmt.Sprintf("inventory slot %d does not exist", index))
	}
	if inv.Slots[index] == 0 {
		return 0, errs.New(errs.NotFound, fmt.Sprintf("inventory slot %d is empty", index))
	}
	return inv.Slots[index], nil
}

// AddItem places id in the first empty slot and returns the slot index.
func (inv *Inventory) AddItem(id int64) (int, error) {
	if inv.Contains(id) {
		return -1, errs.New(errs.DuplicateItem, fmt.Sprintf("item %d is already in inventory", id))
	}
	for i, held := range inv.Slots {
		if held == 0 {
			inv.Slots[i] = id
			return i, nil
		}
	}
	return -1, errs.New(errs.InventoryFull, "inventory is full, cannot add item")
}

// RemoveItem empties the slot holding id. Equipped items must be unequipped first.
func (inv *Inventory) RemoveItem(id int64) error {
	i := inv.IndexOf(id)
	if i < 0 {
		return errs.New(errs.ItemNotInInventory, fmt.Sprintf("item %d is not in inventory", id))
	}
	if slot, ok := inv.EquippedSlot(id); ok {
		return errs.New(errs.ItemEquipped, fmt.Sprintf("item %d is equipped in %s", id, slot))
	}
	inv.Slots[i] = 0
	return nil
}

// EquippedSlot returns the slot id is equipped in.
func (inv *Inventory) EquippedSlot(id int64) (EquipSlot, bool) {
	for slot, held := range inv.Equipped {
		if held == id {
			return slot, true
		}
	}
	return "", false
}

// IsEquipped reports whether id occupies any equip slot.
func (inv *Inventory) IsEquipped(id int64) bool {
	_, ok := inv.EquippedSlot(id)
	return ok
}

// EquipItem equips id in the slot named by its tag. It returns the id of the
// item that had to be unequipped to make room, or 0.
func (inv *Inventory) EquipItem(items ItemLookup, id int64) (int64, error) {
	return inv.EquipItemInto(items, id, "")
}

// EquipItemInto equips id into target. An empty target means the item's own tag.
// Equipping the item already in the slot is a no-op; any other occupant is
// unequipped first.
func (inv *Inventory) EquipItemInto(items ItemLookup, id int64, target EquipSlot) (int64, error) {
	ent, err := items.Item(id)
	if err != nil {
		return 0, err
	}
	item := ent.Item
	if item.Slot != "" && !item.Slot.Valid() {
		return 0, errs.New(errs.InvalidSlotTag, fmt.Sprintf("%s is not a valid equip slot", item.Slot))
	}
	if !inv.Contains(id) {
		return 0, errs.New(errs.ItemNotInInventory, fmt.Sprintf("%s is not in inventory", ent.Name))
	}
	if !item.Equippable() {
		return 0, errs.New(errs.NotEquippable, fmt.Sprintf("%s is not equippable", ent.Name))
	}
	if target == "" {
		target = item.Slot
	}
	if !target.Valid() {
		return 0, errs.New(errs.InvalidSlotTag, fmt.Sprintf("%s is not a valid equip slot", target))
	}
	if target != item.Slot {
		return 0, errs.New(errs.SlotMismatch, fmt.Sprintf("%s only equippable in %s slot", ent.Name, item.Slot))
	}

	current, occupied := inv.Equipped[target]
	if occupied && current == id {
		return 0, nil
	}
	var replaced int64
	if occupied {
		if _, err := inv.UnequipItem(target); err != nil {
			return 0, err
		}
		replaced = current
	}
	inv.Equipped[target] = id
	return replaced, nil
}

// UnequipItem clears slot and returns the id that was equipped there.
func (inv *Inventory) UnequipItem(slot EquipSlot) (int64, error) {
	if !slot.Valid() {
		return 0, errs.New(errs.InvalidSlotTag, fmt.Sprintf("%s is not a valid equip slot", slot))
	}
	id, ok := inv.Equipped[slot]
	if !ok {
		return 0, errs.New(errs.SlotEmpty, fmt.Sprintf("no item equipped in %s slot", slot))
	}
	if !inv.Contains(id) {
		return 0, errs.New(errs.ItemNotInInventory, fmt.Sprintf("item %d equipped in %s is not in inventory", id, slot))
	}
	delete(inv.Equipped, slot)
	return id, nil
}

// Forget drops every reference to id, equipped or carried.
func (inv *Inventory) Forget(id int64) bool {
	found := false
	for slot, held := range inv.Equipped {
		if held == id {
			delete(inv.Equipped, slot)
			found = true
		}
	}
	for i, held := range inv.Slots {
		if held == id {
			inv.Slots[i] = 0
			found = true
		}
	}
	return found
}

// Weight sums the weight of every carried item.
func (inv *Inventory) Weight(items ItemLookup) (int, error) {
	total := 0
	for _, id := range inv.Items() {
		ent, err := items.Item(id)
		if err != nil {
			return 0, err
		}
		total += ent.Item.Stats.Weight
	}
	return total, nil
}

// VisualEquipment maps each occupied equip slot to the equipped item's sprite.
func (inv *Inventory) VisualEquipment(items ItemLookup) (map[EquipSlot]string, error) {
	out := make(map[EquipSlot]string, len(inv.Equipped))
	for slot, id := range inv.Equipped {
		ent, err := items.Item(id)
		if err != nil {
			return nil, err
		}
		out[slot] = ent.Item.Sprite
	}
	return out, nil
}
