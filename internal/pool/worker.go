package pool

import (
	"context"
	"sync"
)

// Worker wraps a spawned background goroutine with a stable name and
// idempotent stop/join semantics, per spec.md §4.4. Both scheduler
// flavours hand out a *Worker for the same reason: the pool's Monitor is
// a long-running unit of work that the pool must be able to stop and wait
// for without caring how it was spawned. The startup fill is not a
// Worker: Start runs it on the caller's goroutine.
type Worker struct {
	name     string
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newWorker(name string) *Worker {
	return &Worker{
		name: name,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Name returns the worker's stable, log-correlatable name.
func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) stopSignal() <-chan struct{} {
	return w.stop
}

// Stop signals cooperative termination. Safe to call multiple times and
// from outside the worker's own goroutine.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *Worker) markDone() {
	close(w.done)
}

// Join awaits the worker's completion. A cancelled ctx is reported to the
// caller; the worker's own stop signal is never surfaced as an error — it
// is absorbed by the worker body itself.
func (w *Worker) Join(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn launches fn on a plain goroutine and returns the Worker tracking
// it. Both scheduler flavours spawn workers this way; they differ only in
// how state-mutating operations inside fn serialize against the rest of
// the pool (see scheduler.withLock).
func spawn(name string, fn func(stop <-chan struct{})) *Worker {
	w := newWorker(name)
	go func() {
		defer w.markDone()
		fn(w.stopSignal())
	}()
	return w
}
