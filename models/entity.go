package models

// Kind tags the variant payload carried by an Entity.
type Kind string

const (
	KindLifeForm   Kind = "lifeform"
	KindWeapon     Kind = "weapon"
	KindApparel    Kind = "apparel"
	KindIngredient Kind = "ingredient"
	KindPotion     Kind = "potion"
	KindMisc       Kind = "misc"
)

// Valid reports whether k is a known variant tag.
func (k Kind) Valid() bool {
	return k == KindLifeForm || k.IsItem()
}

// IsItem reports whether k is one of the item variants.
func (k Kind) IsItem() bool {
	switch k {
	case KindWeapon, KindApparel, KindIngredient, KindPotion, KindMisc:
		return true
	}
	return false
}

// Entity is the common header for every game object. Exactly one of LifeForm
// or Item is set, matching Kind.
type Entity struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Kind       Kind              `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`

	LifeForm *LifeForm `json:"lifeform,omitempty"`
	Item     *Item     `json:"item,omitempty"`
}

// LifeForm is a player or creature.
type LifeForm struct {
	Stats       Stats      `json:"stats"`
	Inventory   *Inventory `json:"inventory"`
	CurrentRoom string     `json:"current_room"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
	MoveTime    int        `json:"move_time"`   // ms between steps
	AttackTime  int        `json:"attack_time"` // ms between swings
	Sprite      string     `json:"sprite"`
}

// Coords returns the lifeform position as sent over the wire.
func (lf *LifeForm) Coords() [2]int {
	return [2]int{lf.X, lf.Y}
}

// TotalStat returns the base value of stat plus the bonuses of every equipped item.
func (lf *LifeForm) TotalStat(items ItemLookup, stat Stat) (int, error) {
	if !stat.Valid() {
		return 0, invalidStat(string(stat))
	}
	total := lf.Stats.Get(stat)
	for _, id := range lf.Inventory.Equipped {
		item, err := items.Item(id)
		if err != nil {
			return 0, err
		}
		total += item.Item.Stats.Bonus(stat)
	}
	return total, nil
}

// Item is anything that can be carried.
type Item struct {
	Description string    `json:"description"`
	Slot        EquipSlot `json:"slot,omitempty"`
	Stats       ItemStats `json:"stats"`
	Sprite      string    `json:"sprite,omitempty"`
}

// Equippable reports whether the item carries an equip-slot tag.
func (it *Item) Equippable() bool {
	return it.Slot != ""
}
