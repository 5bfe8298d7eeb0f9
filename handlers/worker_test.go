package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"little-realm/server/messages"
)

func startWorker(t *testing.T, d *Dispatcher) (*Worker, context.CancelFunc, <-chan error) {
	t.Helper()
	w := NewWorker(d)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return w, cancel, done
}

func TestWorkerProcessesConcurrentRequests(t *testing.T) {
	f := newFixture(t)
	w, _, _ := startWorker(t, f.d)

	resp, err := w.Process(context.Background(), request("alice", "Zaxim", 0, "login", nil))
	if err != nil || resp.Status != messages.StatusOK {
		t.Fatalf("login: %v %+v", err, resp)
	}
	id := resp.Response.(loginBody).ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			resp, err := w.Process(context.Background(), request("alice", "Zaxim", id, "update_coords", []int{x, x}))
			if err != nil || resp.Status != messages.StatusOK {
				t.Errorf("update_coords %d: %v %+v", x, err, resp)
			}
		}(i)
	}
	wg.Wait()

	var x int
	if err := w.Do(context.Background(), func(d *Dispatcher) {
		ent, _ := d.store.LifeForm(id)
		x = ent.LifeForm.X
	}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if x < 0 || x >= 20 {
		t.Fatalf("unexpected final x %d", x)
	}
}

func TestWorkerStops(t *testing.T) {
	f := newFixture(t)
	w, cancel, done := startWorker(t, f.d)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop")
	}

	_, err := w.Process(context.Background(), request("bob", "Mike", 0, "test", nil))
	if !errors.Is(err, ErrWorkerStopped) {
		t.Fatalf("expected ErrWorkerStopped, got %v", err)
	}
}

func TestWorkerDoHonoursCallerContext(t *testing.T) {
	f := newFixture(t)
	w := NewWorker(f.d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Do(ctx, func(*Dispatcher) {}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
