// Package mailbox queues outgoing notifications per recipient until the
// recipient's client asks for them.
package mailbox

import "strings"

const (
	// TargetAll addresses every connected character.
	TargetAll = "ALL"
	// RoomPrefix addresses every character in the named room, e.g. "room:town".
	RoomPrefix = "room:"
)

// Room returns the target string for everyone in room.
func Room(name string) string {
	return RoomPrefix + name
}

// Recipients resolves fan-out targets to character names.
type Recipients interface {
	ConnectedNames() []string
	NamesInRoom(room string) []string
}

// Addresser stamps an item with the character it is queued for.
type Addresser[T any] func(item T, recipient string) T

type entry[T any] struct {
	recipient string
	item      T
}

// Queue is an append-and-drain mailbox. It is not safe for concurrent use;
// the owning worker serializes access.
type Queue[T any] struct {
	recipients Recipients
	address    Addresser[T]
	entries    []entry[T]
}

// NewQueue creates an empty queue. address may be nil when items do not
// record their recipient.
func NewQueue[T any](recipients Recipients, address Addresser[T]) *Queue[T] {
	return &Queue[T]{recipients: recipients, address: address}
}

// Enqueue adds item for target and returns how many copies were queued.
// Fan-out targets are resolved now, so characters arriving later never see it.
func (q *Queue[T]) Enqueue(item T, target string) int {
	var names []string
	switch {
	case target == TargetAll:
		names = q.recipients.ConnectedNames()
	case strings.HasPrefix(target, RoomPrefix):
		names = q.recipients.NamesInRoom(strings.TrimPrefix(target, RoomPrefix))
	default:
		names = []string{target}
	}

	for _, name := range names {
		stamped := item
		if q.address != nil {
			stamped = q.address(item, name)
		}
		q.entries = append(q.entries, entry[T]{recipient: name, item: stamped})
	}
	return len(names)
}

// Drain removes and returns every item queued for name, oldest first.
func (q *Queue[T]) Drain(name string) []T {
	var out []T
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.recipient == name {
			out = append(out, e.item)
			continue
		}
		kept = append(kept, e)
	}
	clearTail(q.entries, len(kept))
	q.entries = kept
	return out
}

// Forget discards everything queued for name.
func (q *Queue[T]) Forget(name string) int {
	return len(q.Drain(name))
}

// Len returns the number of queued items across all recipients.
func (q *Queue[T]) Len() int {
	return len(q.entries)
}

// clearTail zeroes entries past n so drained items can be collected.
func clearTail[T any](entries []entry[T], n int) {
	var zero entry[T]
	for i := n; i < len(entries); i++ {
		entries[i] = zero
	}
}
