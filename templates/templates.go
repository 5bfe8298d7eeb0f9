// Package templates loads item, lifeform and room templates. A default set is
// embedded in the binary; a directory with the same layout can replace it.
//
// Layout:
//
//	items/<key>.json
//	lifeforms/<key>.json
//	rooms.json
package templates

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"little-realm/server/models"
)

//go:embed data
var embedded embed.FS

// Item describes how to build one item.
type Item struct {
	Key         string            `json:"-"`
	Name        string            `json:"name"`
	Kind        models.Kind       `json:"item_type"`
	Description string            `json:"description"`
	Slot        models.EquipSlot  `json:"equippable_slot"`
	Stats       map[string]int    `json:"stats"`
	Weight      int               `json:"weight"`
	Sprite      string            `json:"sprite"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// InventoryEntry places an item template in a lifeform's starting inventory.
type InventoryEntry struct {
	Item     string `json:"item"`
	Equipped bool   `json:"equipped"`
}

// LifeForm describes how to build one lifeform. Nil inventory entries leave
// the matching slot empty.
type LifeForm struct {
	Key        string            `json:"-"`
	Name       string            `json:"name"`
	Stats      map[string]int    `json:"stats"`
	MoveTime   int               `json:"move_time"`
	AttackTime int               `json:"attack_time"`
	Sprite     string            `json:"sprite"`
	Inventory  []*InventoryEntry `json:"inventory"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Library is a loaded set of templates.
type Library struct {
	Items     map[string]*Item
	LifeForms map[string]*LifeForm
	Rooms     []models.Room
}

// Default loads the embedded templates.
func Default() (*Library, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads templates from a directory on disk.
func LoadDir(dir string) (*Library, error) {
	return Load(os.DirFS(dir))
}

// Load reads every template in fsys and checks cross references.
func Load(fsys fs.FS) (*Library, error) {
	lib := &Library{
		Items:     make(map[string]*Item),
		LifeForms: make(map[string]*LifeForm),
	}

	if err := eachJSON(fsys, "items", func(key string, data []byte) error {
		var it Item
		if err := json.Unmarshal(data, &it); err != nil {
			return err
		}
		if !it.Kind.IsItem() {
			return fmt.Errorf("unknown item_type %q", it.Kind)
		}
		it.Key = key
		lib.Items[key] = &it
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachJSON(fsys, "lifeforms", func(key string, data []byte) error {
		var lf LifeForm
		if err := json.Unmarshal(data, &lf); err != nil {
			return err
		}
		lf.Key = key
		lib.LifeForms[key] = &lf
		return nil
	}); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(fsys, "rooms.json")
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read rooms.json: %w", err)
	default:
		if err := json.Unmarshal(data, &lib.Rooms); err != nil {
			return nil, fmt.Errorf("parse rooms.json: %w", err)
		}
	}

	for key, lf := range lib.LifeForms {
		for i, entry := range lf.Inventory {
			if entry == nil {
				continue
			}
			if _, ok := lib.Items[entry.Item]; !ok {
				return nil, fmt.Errorf("lifeform %s slot %d: unknown item template %q", key, i, entry.Item)
			}
		}
	}
	return lib, nil
}

// LifeFormKeys returns the lifeform template keys in sorted order.
func (l *Library) LifeFormKeys() []string {
	keys := make([]string, 0, len(l.LifeForms))
	for k := range l.LifeForms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func eachJSON(fsys fs.FS, dir string, fn func(key string, data []byte) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s/%s: %w", dir, entry.Name(), err)
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		if err := fn(key, data); err != nil {
			return fmt.Errorf("template %s/%s: %w", dir, entry.Name(), err)
		}
	}
	return nil
}
