package handlers

import (
	"context"
	"errors"

	"little-realm/server/logger"
	"little-realm/server/messages"
)

// ErrWorkerStopped is returned for jobs submitted after the worker exited.
var ErrWorkerStopped = errors.New("game worker stopped")

type job struct {
	fn   func(d *Dispatcher)
	done chan struct{}
}

// Worker serialises every touch of game state onto one goroutine. Sessions
// hand it decoded requests and wait for the response.
type Worker struct {
	dispatcher *Dispatcher
	jobs       chan job
	stopped    chan struct{}
}

// NewWorker creates a worker around dispatcher. Run must be called for jobs to
// make progress.
func NewWorker(dispatcher *Dispatcher) *Worker {
	return &Worker{
		dispatcher: dispatcher,
		jobs:       make(chan job),
		stopped:    make(chan struct{}),
	}
}

// Run executes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stopped)
	logger.Log.Info("Game worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Game worker stopping")
			return nil
		case j := <-w.jobs:
			j.fn(w.dispatcher)
			close(j.done)
		}
	}
}

// Do runs fn on the worker goroutine and waits for it to finish.
func (w *Worker) Do(ctx context.Context, fn func(d *Dispatcher)) error {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case w.jobs <- j:
	case <-w.stopped:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// An accepted job always runs to completion.
	<-j.done
	return nil
}

// Process dispatches req on the worker goroutine.
func (w *Worker) Process(ctx context.Context, req messages.Request) (messages.Response, error) {
	var resp messages.Response
	err := w.Do(ctx, func(d *Dispatcher) {
		resp = d.Dispatch(req)
	})
	return resp, err
}
