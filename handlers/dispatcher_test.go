package handlers

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"little-realm/server/auth"
	"little-realm/server/logger"
	"little-realm/server/messages"
	"little-realm/server/persistence"
	"little-realm/server/services"
	"little-realm/server/templates"
)

func init() {
	logger.Silence()
}

type fixture struct {
	d     *Dispatcher
	store *services.EntityStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	lib, err := templates.Default()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	store := services.NewEntityStore(db, 0)
	players := services.NewPlayerService(store, services.NewFactory(store, lib),
		services.StartPosition{Room: "template_room", X: 160, Y: 160})
	table := auth.NewTable(map[string]auth.Account{
		"alice": {Password: "pw", Characters: []string{"Zaxim"}},
		"bob":   {Password: "pw", Characters: []string{"Mike", "Madaar"}},
		"carol": {Password: "pw", Characters: []string{"Mary jane"}},
	})
	return &fixture{d: NewDispatcher(store, players, table), store: store}
}

func request(user, character string, id int64, command string, args any) messages.Request {
	raw, _ := json.Marshal(args)
	return messages.Request{
		Username:      user,
		CharacterName: character,
		Password:      "pw",
		ID:            id,
		Request:       command,
		Args:          raw,
	}
}

func (f *fixture) login(t *testing.T, user, character string) int64 {
	t.Helper()
	resp := f.d.Dispatch(request(user, character, 0, "login", nil))
	if resp.Status != messages.StatusOK {
		t.Fatalf("login %s: %+v", character, resp)
	}
	return resp.Response.(loginBody).ID
}

func message(t *testing.T, resp messages.Response) string {
	t.Helper()
	body, ok := resp.Response.(messages.MessageBody)
	if !ok {
		t.Fatalf("expected a message body, got %T", resp.Response)
	}
	return body.Message
}

func TestDispatchRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	req := request("alice", "Zaxim", 0, "login", nil)
	req.Password = "wrong"
	resp := f.d.Dispatch(req)
	if resp.Status != messages.StatusAuthFailed || message(t, resp) != "Credentials invalid" {
		t.Fatalf("expected auth failure, got %+v", resp)
	}

	resp = f.d.Dispatch(request("alice", "Mike", 0, "login", nil))
	if resp.Status != messages.StatusAuthFailed {
		t.Fatalf("expected auth failure for someone else's character, got %+v", resp)
	}
	if f.store.Len() != 0 {
		t.Fatalf("rejected requests must not touch the world")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"evaluate", "fly", ""} {
		resp := f.d.Dispatch(request("alice", "Zaxim", 0, name, nil))
		if resp.Status != messages.StatusUnknownCommand {
			t.Fatalf("%q: expected unknown command, got %+v", name, resp)
		}
		if message(t, resp) != "Unknown command "+name {
			t.Fatalf("%q: unexpected message %q", name, message(t, resp))
		}
	}
}

func TestTestCommand(t *testing.T) {
	f := newFixture(t)
	resp := f.d.Dispatch(request("bob", "Mike", 0, "test", nil))
	if resp.Status != messages.StatusOK || message(t, resp) != "Hello bob!" {
		t.Fatalf("unexpected test response %+v", resp)
	}
}

func TestLoginLogout(t *testing.T) {
	f := newFixture(t)

	resp := f.d.Dispatch(request("alice", "Zaxim", 0, "login", nil))
	if resp.Status != messages.StatusOK {
		t.Fatalf("login: %+v", resp)
	}
	body := resp.Response.(loginBody)
	if body.CurrentRoom != "template_room" || body.Coords != [2]int{160, 160} || body.Sprite != "lifeforms/zaxim.png" {
		t.Fatalf("unexpected login body %+v", body)
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", 0, "login", nil))
	if resp.Status != messages.StatusFailed || message(t, resp) != "Character already logged in" {
		t.Fatalf("expected duplicate login to fail, got %+v", resp)
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", body.ID+100, "logout", nil))
	if resp.Status != messages.StatusFailed {
		t.Fatalf("expected logout with the wrong id to fail, got %+v", resp)
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", body.ID, "logout", nil))
	if resp.Status != messages.StatusOK || message(t, resp) != "Logout successful" {
		t.Fatalf("logout: %+v", resp)
	}
	if f.store.Len() != 0 {
		t.Fatalf("expected world empty after logout, %d entities left", f.store.Len())
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", body.ID, "logout", nil))
	if resp.Status != messages.StatusFailed || message(t, resp) != "Character is not logged in" {
		t.Fatalf("expected second logout to fail, got %+v", resp)
	}
}

func TestChatFanOut(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")
	mike := f.login(t, "bob", "Mike")

	if resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "say", map[string]any{"message": "hi", "id": 0})); resp.Status != messages.StatusOK {
		t.Fatalf("say: %+v", resp)
	}
	if resp := f.d.Dispatch(request("bob", "Mike", mike, "tell", map[string]string{"message": "psst", "target": "zaxim"})); resp.Status != messages.StatusOK {
		t.Fatalf("tell: %+v", resp)
	}
	if resp := f.d.Dispatch(request("bob", "Mike", mike, "ooc", map[string]string{"message": "brb"})); resp.Status != messages.StatusOK {
		t.Fatalf("ooc: %+v", resp)
	}

	resp := f.d.Dispatch(request("bob", "Mike", mike, "tell", map[string]string{"message": "?", "target": "nobody"}))
	if resp.Status != messages.StatusFailed || message(t, resp) != "Player not logged in" {
		t.Fatalf("expected tell to an offline player to fail, got %+v", resp)
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", zaxim, "get_roomdata", nil))
	if resp.Status != messages.StatusOK {
		t.Fatalf("get_roomdata: %+v", resp)
	}
	room := resp.Response.(roomDataBody)
	want := []string{"Zaxim: hi", "Mike tells you: psst", "[OOC] Mike: brb"}
	if len(room.Messages) != len(want) {
		t.Fatalf("expected %d messages for Zaxim, got %+v", len(want), room.Messages)
	}
	for i, m := range room.Messages {
		if m.Message != want[i] || m.CharacterName != "Zaxim" {
			t.Fatalf("message %d: got %+v, want %q", i, m, want[i])
		}
	}
	if room.Messages[1].Color != messages.ColorTell || room.Messages[2].Color != messages.ColorOOC {
		t.Fatalf("unexpected colors %+v", room.Messages)
	}
	if room.Room != "template_room" || room.Contents != "A bare stone hall where new arrivals wake up." {
		t.Fatalf("unexpected room %q: %q", room.Room, room.Contents)
	}
	if len(room.Coords) != 2 || room.Coords[mike].Sprite != "lifeforms/wanderer.png" {
		t.Fatalf("unexpected coords %+v", room.Coords)
	}

	resp = f.d.Dispatch(request("alice", "Zaxim", zaxim, "get_roomdata", nil))
	if got := resp.Response.(roomDataBody).Messages; len(got) != 0 {
		t.Fatalf("expected mailbox drained, got %+v", got)
	}

	resp = f.d.Dispatch(request("bob", "Mike", mike, "get_roomdata", nil))
	if got := resp.Response.(roomDataBody).Messages; len(got) != 2 {
		t.Fatalf("expected say and ooc for Mike, got %+v", got)
	}
}

func TestTellCapitalizesOnlyTheFirstLetter(t *testing.T) {
	f := newFixture(t)
	f.login(t, "carol", "Mary jane")
	mike := f.login(t, "bob", "Mike")

	resp := f.d.Dispatch(request("bob", "Mike", mike, "tell", map[string]string{"message": "hey", "target": "mary JANE"}))
	if resp.Status != messages.StatusOK {
		t.Fatalf("tell: %+v", resp)
	}
	got := f.d.Broadcasts().Drain("Mary jane")
	if len(got) != 1 || got[0].Message != "Mike tells you: hey" {
		t.Fatalf("expected one tell for Mary jane, got %+v", got)
	}
	if f.d.capitalize("") != "" || f.d.capitalize("élodie") != "Élodie" {
		t.Fatalf("unexpected capitalization")
	}
}

func TestLogoutDiscardsMail(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")
	mike := f.login(t, "bob", "Mike")

	f.d.Dispatch(request("alice", "Zaxim", zaxim, "ooc", map[string]string{"message": "bye"}))
	if f.d.Broadcasts().Len() != 2 {
		t.Fatalf("expected one copy per character, got %d", f.d.Broadcasts().Len())
	}
	f.d.Dispatch(request("bob", "Mike", mike, "logout", nil))
	if f.d.Broadcasts().Len() != 1 {
		t.Fatalf("expected Mike's mail discarded, got %d", f.d.Broadcasts().Len())
	}
}

func TestEquipAndUnequip(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")

	tests := []struct {
		command string
		args    any
		status  int
		message string
	}{
		{"inventory_equip", 3, messages.StatusOK, "Equipped Iron Helm"},
		{"inventory_equip", 4, messages.StatusFailed, ""},
		{"inventory_equip", 2, messages.StatusFailed, ""},
		{"inventory_unequip", "left_hand", messages.StatusOK, "Unequipped Wooden Shield"},
		{"inventory_unequip", "left_hand", messages.StatusFailed, ""},
		{"inventory_unequip", 0, messages.StatusOK, "Unequipped Rusty Sword"},
		{"inventory_unequip", 4, messages.StatusFailed, ""},
		{"inventory_unequip", "tail", messages.StatusFailed, ""},
	}
	for _, tt := range tests {
		resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, tt.command, tt.args))
		if resp.Status != tt.status {
			t.Fatalf("%s %v: expected status %d, got %+v", tt.command, tt.args, tt.status, resp)
		}
		if tt.message != "" && message(t, resp) != tt.message {
			t.Fatalf("%s %v: got %q, want %q", tt.command, tt.args, message(t, resp), tt.message)
		}
	}

	ent, _ := f.store.LifeForm(zaxim)
	if len(ent.LifeForm.Inventory.Equipped) != 1 {
		t.Fatalf("expected only the helm equipped, got %v", ent.LifeForm.Inventory.Equipped)
	}
}

func TestInventoryUpdateQueuesVisualEquipment(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")
	f.login(t, "bob", "Mike")

	resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "inventory_update", nil))
	if resp.Status != messages.StatusOK {
		t.Fatalf("inventory_update: %+v", resp)
	}
	entries := resp.Response.([]services.InventoryEntry)
	if len(entries) != 4 || entries[2].Index != 3 || entries[2].Equipped {
		t.Fatalf("unexpected inventory summary %+v", entries)
	}

	payloads := f.d.Payloads().Drain("Mike")
	if len(payloads) != 1 || payloads[0].Tag != "visualequipment" {
		t.Fatalf("expected one visualequipment payload for Mike, got %+v", payloads)
	}
	data := payloads[0].Data.(visualEquipment)
	if data.PlayerID != zaxim || data.VisualEquipment["right_hand"] != "weapons/rusty_sword.png" {
		t.Fatalf("unexpected payload data %+v", data)
	}
}

func TestAttack(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")
	mike := f.login(t, "bob", "Mike")

	resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "attack", mike+1000))
	if resp.Status != messages.StatusFailed || !strings.Contains(message(t, resp), "does current target still exist") {
		t.Fatalf("expected unknown target failure, got %+v", resp)
	}

	// Zaxim: STR 7 + sword STR 1 + DMG 4 = 12 against Mike's PDEF 1.
	resp = f.d.Dispatch(request("alice", "Zaxim", zaxim, "attack", mike))
	result := resp.Response.(services.AttackResult)
	if result.Damage != 11 || result.TargetHP != 9 || result.Slain {
		t.Fatalf("unexpected first hit %+v", result)
	}
	resp = f.d.Dispatch(request("alice", "Zaxim", zaxim, "attack", mike))
	result = resp.Response.(services.AttackResult)
	if result.TargetHP != 0 || !result.Slain {
		t.Fatalf("expected Mike slain, got %+v", result)
	}

	got := f.d.Broadcasts().Drain("Mike")
	want := []string{
		"Zaxim attacks Mike for 11 damage.",
		"Zaxim attacks Mike for 11 damage.",
		"Mike has been slain!",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d combat lines, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].Message != want[i] || got[i].Color != messages.ColorCombat {
			t.Fatalf("line %d: got %+v, want %q", i, got[i], want[i])
		}
	}
}

func TestGetTargetAndUpdateCoords(t *testing.T) {
	f := newFixture(t)
	zaxim := f.login(t, "alice", "Zaxim")
	mike := f.login(t, "bob", "Mike")

	for _, args := range []any{mike, []int64{mike}} {
		resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "get_target", args))
		if resp.Status != messages.StatusOK {
			t.Fatalf("get_target %v: %+v", args, resp)
		}
		body := resp.Response.(targetBody)
		// Rusty Sword 5 + Red Potion 1.
		if body.Name != "Mike" || body.Stats["HP"] != 20 || body.Weight != 6 {
			t.Fatalf("unexpected target %+v", body)
		}
	}
	if resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "get_target", 9999)); resp.Status != messages.StatusFailed {
		t.Fatalf("expected missing target to fail, got %+v", resp)
	}

	resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "update_coords", []int{32, 48}))
	if resp.Status != messages.StatusOK {
		t.Fatalf("update_coords: %+v", resp)
	}
	if timing := resp.Response.(timingBody); timing.MoveTime != 300 || timing.AttackTime != 900 {
		t.Fatalf("unexpected timing %+v", timing)
	}
	ent, _ := f.store.LifeForm(zaxim)
	if ent.LifeForm.Coords() != [2]int{32, 48} {
		t.Fatalf("coords not updated: %v", ent.LifeForm.Coords())
	}

	if resp := f.d.Dispatch(request("alice", "Zaxim", zaxim, "update_coords", "north")); resp.Status != messages.StatusFailed {
		t.Fatalf("expected bad args to fail, got %+v", resp)
	}
}
