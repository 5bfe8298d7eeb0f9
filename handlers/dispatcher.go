package handlers

import (
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"little-realm/server/auth"
	"little-realm/server/errs"
	"little-realm/server/logger"
	"little-realm/server/mailbox"
	"little-realm/server/messages"
	"little-realm/server/models"
	"little-realm/server/services"
)

// Command names a request the dispatcher understands.
type Command string

const (
	CommandLogin            Command = "login"
	CommandLogout           Command = "logout"
	CommandInventoryUpdate  Command = "inventory_update"
	CommandInventoryEquip   Command = "inventory_equip"
	CommandInventoryUnequip Command = "inventory_unequip"
	CommandSay              Command = "say"
	CommandTell             Command = "tell"
	CommandOOC              Command = "ooc"
	CommandAttack           Command = "attack"
	CommandGetTarget        Command = "get_target"
	CommandGetRoomData      Command = "get_roomdata"
	CommandUpdateCoords     Command = "update_coords"
	CommandTest             Command = "test"
)

type handlerFunc func(d *Dispatcher, req messages.Request) messages.Response

// commandTable is the complete set of commands. Names not listed here are
// rejected with UnknownCommand.
var commandTable = map[Command]handlerFunc{
	CommandLogin:            (*Dispatcher).login,
	CommandLogout:           (*Dispatcher).logout,
	CommandInventoryUpdate:  (*Dispatcher).inventoryUpdate,
	CommandInventoryEquip:   (*Dispatcher).inventoryEquip,
	CommandInventoryUnequip: (*Dispatcher).inventoryUnequip,
	CommandSay:              (*Dispatcher).say,
	CommandTell:             (*Dispatcher).tell,
	CommandOOC:              (*Dispatcher).ooc,
	CommandAttack:           (*Dispatcher).attack,
	CommandGetTarget:        (*Dispatcher).getTarget,
	CommandGetRoomData:      (*Dispatcher).getRoomData,
	CommandUpdateCoords:     (*Dispatcher).updateCoords,
	CommandTest:             (*Dispatcher).test,
}

// Dispatcher authenticates requests and routes them to command handlers. It
// owns the mailboxes and must only be used from the game worker.
type Dispatcher struct {
	store       *services.EntityStore
	players     *services.PlayerService
	credentials auth.CredentialTable
	broadcasts  *mailbox.Queue[messages.Broadcast]
	payloads    *mailbox.Queue[messages.Payload]
	upper       cases.Caser
	lower       cases.Caser
}

// NewDispatcher wires a dispatcher to the world state.
func NewDispatcher(store *services.EntityStore, players *services.PlayerService, credentials auth.CredentialTable) *Dispatcher {
	return &Dispatcher{
		store:       store,
		players:     players,
		credentials: credentials,
		broadcasts: mailbox.NewQueue[messages.Broadcast](players, func(b messages.Broadcast, to string) messages.Broadcast {
			b.CharacterName = to
			return b
		}),
		payloads: mailbox.NewQueue[messages.Payload](players, func(p messages.Payload, to string) messages.Payload {
			p.CharacterName = to
			return p
		}),
		upper: cases.Upper(language.Und),
		lower: cases.Lower(language.Und),
	}
}

// Dispatch runs one request and always produces a response. Failures become
// negative statuses.
func (d *Dispatcher) Dispatch(req messages.Request) messages.Response {
	log := logger.Log.WithFields(logrus.Fields{
		"user":      req.Username,
		"character": req.CharacterName,
		"request":   req.Request,
	})

	if err := d.credentials.Authenticate(req.Username, req.Password, req.CharacterName); err != nil {
		log.WithField("kind", errs.KindOf(err)).Warn("Rejected request with invalid credentials")
		return messages.Fail(messages.StatusAuthFailed, "Credentials invalid")
	}

	handler, ok := commandTable[Command(req.Request)]
	if !ok {
		log.WithField("kind", errs.UnknownCommand).Warn("Rejected unknown command")
		return messages.Fail(messages.StatusUnknownCommand, "Unknown command "+req.Request)
	}

	resp := handler(d, req)
	log.WithField("status", resp.Status).Debug("Handled request")
	return resp
}

// actor returns the requesting character's lifeform. The character must be
// online and req.ID must be its id.
func (d *Dispatcher) actor(req messages.Request) (*models.Entity, *messages.Response) {
	id, ok := d.players.ActiveID(req.CharacterName)
	if !ok || id != req.ID {
		resp := messages.Fail(messages.StatusFailed, "Character is not logged in")
		return nil, &resp
	}
	ent, err := d.store.LifeForm(id)
	if err != nil {
		resp := messages.Fail(messages.StatusFailed, err.Error())
		return nil, &resp
	}
	return ent, nil
}

// capitalize upper-cases the first letter of name and lower-cases the rest, so
// "mary JANE" becomes "Mary jane".
func (d *Dispatcher) capitalize(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return d.upper.String(string(first)) + d.lower.String(name[size:])
}

// Broadcasts exposes the chat mailbox.
func (d *Dispatcher) Broadcasts() *mailbox.Queue[messages.Broadcast] {
	return d.broadcasts
}

// Payloads exposes the payload mailbox.
func (d *Dispatcher) Payloads() *mailbox.Queue[messages.Payload] {
	return d.payloads
}
