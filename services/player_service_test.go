package services

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"little-realm/server/persistence"
	"little-realm/server/templates"
)

func newPlayerService(t *testing.T) (*PlayerService, *EntityStore) {
	t.Helper()
	db, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	lib, err := templates.Default()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	store := NewEntityStore(db, 0)
	ps := NewPlayerService(store, NewFactory(store, lib), StartPosition{Room: "template_room", X: 160, Y: 160})
	return ps, store
}

func TestLoginNewCharacterUsesTemplateAndStart(t *testing.T) {
	ps, _ := newPlayerService(t)

	ent, err := ps.Login("Zaxim")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ent.Name != "Zaxim" || ent.LifeForm.Sprite != "lifeforms/zaxim.png" {
		t.Fatalf("expected zaxim template, got %+v", ent)
	}
	if ent.LifeForm.CurrentRoom != "template_room" || ent.LifeForm.Coords() != [2]int{160, 160} {
		t.Fatalf("expected start position, got %s %v", ent.LifeForm.CurrentRoom, ent.LifeForm.Coords())
	}

	if _, err := ps.Login("Zaxim"); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	other, err := ps.Login("Mike")
	if err != nil {
		t.Fatalf("login Mike: %v", err)
	}
	if other.LifeForm.Sprite != "lifeforms/wanderer.png" {
		t.Fatalf("expected default template for Mike, got %q", other.LifeForm.Sprite)
	}
}

func TestLogoutSavesAndRestoresPosition(t *testing.T) {
	ps, store := newPlayerService(t)

	ent, _ := ps.Login("Madaar")
	ent.LifeForm.CurrentRoom = "town"
	ent.LifeForm.X, ent.LifeForm.Y = 8, 16

	if err := ps.Logout("Madaar"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ps.IsActive("Madaar") {
		t.Fatalf("expected Madaar offline")
	}
	if store.Len() != 0 {
		t.Fatalf("expected lifeform and items removed, %d entities left", store.Len())
	}
	if err := ps.Logout("Madaar"); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}

	back, err := ps.Login("Madaar")
	if err != nil {
		t.Fatalf("login again: %v", err)
	}
	if back.LifeForm.CurrentRoom != "town" || back.LifeForm.Coords() != [2]int{8, 16} {
		t.Fatalf("expected saved position, got %s %v", back.LifeForm.CurrentRoom, back.LifeForm.Coords())
	}
	if back.ID == ent.ID {
		t.Fatalf("expected a fresh id after reload")
	}
	if len(back.LifeForm.Inventory.Equipped) != 2 {
		t.Fatalf("expected equipment restored, got %v", back.LifeForm.Inventory.Equipped)
	}
}

func TestRecipients(t *testing.T) {
	ps, _ := newPlayerService(t)
	alice, _ := ps.Login("Alice")
	ps.Login("Bob")
	ps.Login("Carol")
	alice.LifeForm.CurrentRoom = "town"

	if got := ps.ConnectedNames(); !reflect.DeepEqual(got, []string{"Alice", "Bob", "Carol"}) {
		t.Fatalf("unexpected connected names %v", got)
	}
	if got := ps.NamesInRoom("template_room"); !reflect.DeepEqual(got, []string{"Bob", "Carol"}) {
		t.Fatalf("unexpected room names %v", got)
	}
	if got := ps.NamesInRoom("town"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("unexpected town names %v", got)
	}
	if err := ps.SaveAll(); err != nil {
		t.Fatalf("save all: %v", err)
	}
}
