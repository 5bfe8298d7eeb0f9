// Package errs defines the error kinds shared by the game server.
package errs

import "errors"

// Kind is a machine-readable error category.
type Kind string

const (
	// KindUnknown is reported for errors that carry no kind.
	KindUnknown Kind = "Unknown"

	// Request and protocol errors
	MalformedRequest   Kind = "MalformedRequest"
	AuthError          Kind = "AuthError"
	UnknownCommand     Kind = "UnknownCommand"
	PacketSizeMismatch Kind = "PacketSizeMismatch"

	// Entity store errors
	NotFound         Kind = "NotFound"
	InvalidVariant   Kind = "InvalidVariant"
	InvalidStat      Kind = "InvalidStat"
	PersistenceError Kind = "PersistenceError"

	// Inventory and equipment errors
	InventoryFull      Kind = "InventoryFull"
	DuplicateItem      Kind = "DuplicateItem"
	InvalidSlotTag     Kind = "InvalidSlotTag"
	ItemNotInInventory Kind = "ItemNotInInventory"
	ItemEquipped       Kind = "ItemEquipped"
	NotEquippable      Kind = "NotEquippable"
	SlotMismatch       Kind = "SlotMismatch"
	SlotEmpty          Kind = "SlotEmpty"
)

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a domain error with a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
