package models

// CharacterSave is the persisted form of a lifeform and the items it carries.
// Items are stored by value; ids are reassigned on load.
type CharacterSave struct {
	Name        string            `json:"name"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Stats       Stats             `json:"stats"`
	CurrentRoom string            `json:"current_room"`
	X           int               `json:"x"`
	Y           int               `json:"y"`
	MoveTime    int               `json:"move_time"`
	AttackTime  int               `json:"attack_time"`
	Sprite      string            `json:"sprite"`

	// Inventory has one entry per carry slot; nil entries are empty slots.
	Inventory []*ItemSave `json:"inventory"`
	// Equipped maps slots to indexes into Inventory.
	Equipped map[EquipSlot]int `json:"equipped,omitempty"`
}

// ItemSave is the persisted form of one item.
type ItemSave struct {
	Kind        Kind              `json:"kind"`
	Name        string            `json:"name"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Description string            `json:"description"`
	Slot        EquipSlot         `json:"slot,omitempty"`
	Stats       ItemStats         `json:"stats"`
	Sprite      string            `json:"sprite,omitempty"`
}
