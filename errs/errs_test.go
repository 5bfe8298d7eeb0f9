package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesByKind(t *testing.T) {
	err := New(SlotEmpty, "no item equipped in head")

	if !errors.Is(err, &Error{Kind: SlotEmpty}) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	if errors.Is(err, &Error{Kind: NotFound}) {
		t.Fatalf("expected different kinds not to match")
	}
}

func TestKindOfWrappedError(t *testing.T) {
	inner := New(InventoryFull, "inventory is full")
	wrapped := fmt.Errorf("add item 4: %w", inner)

	if got := KindOf(wrapped); got != InventoryFull {
		t.Fatalf("expected %s, got %s", InventoryFull, got)
	}
	if !IsKind(wrapped, InventoryFull) {
		t.Fatalf("expected IsKind to see through fmt wrapping")
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("expected unknown kind for plain errors, got %s", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(PersistenceError, "save slot Mike", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if err.Error() != "save slot Mike: disk gone" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
