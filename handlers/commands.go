package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"little-realm/server/errs"
	"little-realm/server/logger"
	"little-realm/server/mailbox"
	"little-realm/server/messages"
	"little-realm/server/models"
)

type loginBody struct {
	ID          int64  `json:"id"`
	Coords      [2]int `json:"coords"`
	Sprite      string `json:"sprite"`
	CurrentRoom string `json:"current_room"`
}

func (d *Dispatcher) login(req messages.Request) messages.Response {
	if d.players.IsActive(req.CharacterName) {
		return messages.Fail(messages.StatusFailed, "Character already logged in")
	}
	ent, err := d.players.Login(req.CharacterName)
	if err != nil {
		logger.Log.WithError(err).WithField("character", req.CharacterName).Error("Login failed")
		return messages.Fail(messages.StatusFailed, "Could not load character")
	}
	return messages.OK(loginBody{
		ID:          ent.ID,
		Coords:      ent.LifeForm.Coords(),
		Sprite:      ent.LifeForm.Sprite,
		CurrentRoom: ent.LifeForm.CurrentRoom,
	})
}

func (d *Dispatcher) logout(req messages.Request) messages.Response {
	if _, fail := d.actor(req); fail != nil {
		return *fail
	}
	err := d.players.Logout(req.CharacterName)
	d.broadcasts.Forget(req.CharacterName)
	d.payloads.Forget(req.CharacterName)
	if err != nil {
		return messages.Fail(messages.StatusFailed, "Logged out, but the character could not be saved")
	}
	return messages.OK(messages.MessageBody{Message: "Logout successful"})
}

func (d *Dispatcher) inventoryUpdate(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	summary, err := d.store.InventorySummary(ent.ID)
	if err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	visual, err := ent.LifeForm.Inventory.VisualEquipment(d.store)
	if err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	d.payloads.Enqueue(messages.Payload{
		Tag: "visualequipment",
		Data: visualEquipment{
			VisualEquipment: visual,
			PlayerID:        ent.ID,
		},
	}, mailbox.Room(ent.LifeForm.CurrentRoom))
	return messages.OK(summary)
}

type visualEquipment struct {
	VisualEquipment map[models.EquipSlot]string `json:"visualequipment"`
	PlayerID        int64                       `json:"playerid"`
}

func (d *Dispatcher) inventoryEquip(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var index int
	if err := req.DecodeArgs(&index); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	item, err := d.store.EquipAt(ent.ID, index)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"character": req.CharacterName,
			"index":     index,
			"kind":      errs.KindOf(err),
		}).Info("Equip refused")
		return messages.Fail(messages.StatusFailed, "Could not equip item: "+err.Error())
	}
	return messages.OK(messages.MessageBody{Message: "Equipped " + item.Name})
}

// inventoryUnequip accepts either a slot name or the inventory index of an
// equipped item.
func (d *Dispatcher) inventoryUnequip(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}

	var (
		item *models.Entity
		err  error
	)
	var slot string
	if json.Unmarshal(req.Args, &slot) == nil {
		item, err = d.store.Unequip(ent.ID, models.EquipSlot(slot))
	} else {
		var index int
		if err := req.DecodeArgs(&index); err != nil {
			return messages.Fail(messages.StatusFailed, err.Error())
		}
		item, err = d.store.UnequipAt(ent.ID, index)
	}
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"character": req.CharacterName,
			"kind":      errs.KindOf(err),
		}).Info("Unequip refused")
		return messages.Fail(messages.StatusFailed, "Could not unequip item: "+err.Error())
	}
	return messages.OK(messages.MessageBody{Message: "Unequipped " + item.Name})
}

type chatArgs struct {
	Message string `json:"message"`
	Target  string `json:"target"`
}

func (d *Dispatcher) say(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var args chatArgs
	if err := req.DecodeArgs(&args); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	d.broadcasts.Enqueue(messages.Broadcast{
		Message: fmt.Sprintf("%s: %s", ent.Name, args.Message),
		Color:   messages.ColorNormal,
	}, mailbox.Room(ent.LifeForm.CurrentRoom))
	return messages.OK(messages.MessageBody{Message: "say message delivered to server"})
}

func (d *Dispatcher) tell(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var args chatArgs
	if err := req.DecodeArgs(&args); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	target := d.capitalize(args.Target)
	if !d.players.IsActive(target) {
		return messages.Fail(messages.StatusFailed, "Player not logged in")
	}
	d.broadcasts.Enqueue(messages.Broadcast{
		Message: fmt.Sprintf("%s tells you: %s", ent.Name, args.Message),
		Color:   messages.ColorTell,
	}, target)
	return messages.OK(messages.MessageBody{Message: "tell message delivered to server"})
}

func (d *Dispatcher) ooc(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var args chatArgs
	if err := req.DecodeArgs(&args); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	d.broadcasts.Enqueue(messages.Broadcast{
		Message: fmt.Sprintf("[OOC] %s: %s", ent.Name, args.Message),
		Color:   messages.ColorOOC,
	}, mailbox.TargetAll)
	return messages.OK(messages.MessageBody{Message: "ooc message delivered to server"})
}

func (d *Dispatcher) attack(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var targetID int64
	if err := req.DecodeArgs(&targetID); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	result, err := d.store.Attack(ent.ID, targetID)
	if err != nil {
		return messages.Fail(messages.StatusFailed, "Something went wrong, does current target still exist?")
	}

	room := mailbox.Room(ent.LifeForm.CurrentRoom)
	d.broadcasts.Enqueue(messages.Broadcast{
		Message: fmt.Sprintf("%s attacks %s for %d damage.", result.Attacker, result.Target, result.Damage),
		Color:   messages.ColorCombat,
	}, room)
	if result.Slain {
		d.broadcasts.Enqueue(messages.Broadcast{
			Message: result.Target + " has been slain!",
			Color:   messages.ColorCombat,
		}, room)
		logger.Log.WithFields(logrus.Fields{
			"attacker": result.Attacker,
			"target":   result.Target,
		}).Info("Lifeform slain")
	}
	return messages.OK(result)
}

type targetBody struct {
	Name   string       `json:"name"`
	Stats  models.Stats `json:"stats"`
	Weight int          `json:"weight"`
}

// getTarget accepts a bare id or a one-element list holding it.
func (d *Dispatcher) getTarget(req messages.Request) messages.Response {
	if _, fail := d.actor(req); fail != nil {
		return *fail
	}
	var id int64
	if json.Unmarshal(req.Args, &id) != nil {
		var ids []int64
		if err := req.DecodeArgs(&ids); err != nil {
			return messages.Fail(messages.StatusFailed, err.Error())
		}
		if len(ids) == 0 {
			return messages.Fail(messages.StatusFailed, "get_target requires a target id")
		}
		id = ids[0]
	}
	target, err := d.store.LifeForm(id)
	if err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	weight, err := target.LifeForm.Inventory.Weight(d.store)
	if err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	return messages.OK(targetBody{Name: target.Name, Stats: target.LifeForm.Stats, Weight: weight})
}

type roomDataBody struct {
	Room     string                    `json:"room"`
	Contents string                    `json:"contents,omitempty"`
	Coords   map[int64]models.Occupant `json:"coords"`
	Messages []messages.Broadcast      `json:"messages"`
	Payloads []messages.Payload        `json:"payloads"`
}

func (d *Dispatcher) getRoomData(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	room := ent.LifeForm.CurrentRoom
	coords := make(map[int64]models.Occupant)
	for _, id := range d.store.EntitiesInRoom(room) {
		other, err := d.store.LifeForm(id)
		if err != nil {
			continue
		}
		coords[id] = models.Occupant{Coords: other.LifeForm.Coords(), Sprite: other.LifeForm.Sprite}
	}
	body := roomDataBody{
		Room:     room,
		Contents: d.store.Room(room).Contents,
		Coords:   coords,
		Messages: d.broadcasts.Drain(req.CharacterName),
		Payloads: d.payloads.Drain(req.CharacterName),
	}
	if body.Messages == nil {
		body.Messages = []messages.Broadcast{}
	}
	if body.Payloads == nil {
		body.Payloads = []messages.Payload{}
	}
	return messages.OK(body)
}

type timingBody struct {
	MoveTime   int `json:"move_time"`
	AttackTime int `json:"attack_time"`
}

func (d *Dispatcher) updateCoords(req messages.Request) messages.Response {
	ent, fail := d.actor(req)
	if fail != nil {
		return *fail
	}
	var xy [2]int
	if err := req.DecodeArgs(&xy); err != nil {
		return messages.Fail(messages.StatusFailed, err.Error())
	}
	ent.LifeForm.X, ent.LifeForm.Y = xy[0], xy[1]
	return messages.OK(timingBody{MoveTime: ent.LifeForm.MoveTime, AttackTime: ent.LifeForm.AttackTime})
}

func (d *Dispatcher) test(req messages.Request) messages.Response {
	return messages.OK(messages.MessageBody{Message: fmt.Sprintf("Hello %s!", req.Username)})
}
