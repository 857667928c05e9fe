package pool

import (
	"context"
	"sync"
	"time"
)

// scheduler is the one abstraction the two concurrency flavours
// (preemptive multi-threaded and cooperative single-loop) differ over.
// Per spec.md Design Note §9 ("Two flavours, one algorithm"), the Pool
// struct and every private algorithm it runs are identical across both;
// only spawn/sleep/withLock change shape.
type scheduler interface {
	// spawn launches a named background unit of work.
	spawn(name string, fn func(stop <-chan struct{})) *Worker

	// sleep suspends for d, or returns early with ctx.Err() if ctx is
	// cancelled first. Never holds withLock across the sleep.
	sleep(ctx context.Context, d time.Duration) error

	// withLock runs fn with exclusive access to the pool's idle deque,
	// size, and state. fn must not block on anything that itself needs
	// withLock, and must not call sleep — this is the "no operation
	// holds the lock across a driver call longer than necessary"
	// boundary from spec.md §5.
	withLock(fn func())

	// shutdown releases any scheduler-owned background resources (the
	// loop scheduler's actor goroutine). Safe to call multiple times.
	shutdown()
}

// threadedScheduler is the preemptive flavour: spawn launches a plain
// goroutine, and a single mutex guards idle/size/state. Grounded in
// spec.md §5's "Preemptive" model and Design Note §9's SyncStrategy.
//
// spec.md calls for a *reentrant* mutex here because the Python original's
// Monitor calls back into put_conn while already holding the lock. This
// implementation instead keeps the checked/unchecked putConn split from
// spec.md §4.1 — the Monitor re-enqueues directly inside its own
// withLock, the startup fill calls the unchecked putConnLocked from inside
// withLock, and Conn.Release goes through putConnChecked, which takes the
// lock once before delegating to putConnLocked — so
// the lock is never re-acquired by the same call stack and a plain
// sync.Mutex is sufficient. See DESIGN.md for the full Open Question note.
type threadedScheduler struct {
	mu sync.Mutex
}

func newThreadedScheduler() *threadedScheduler {
	return &threadedScheduler{}
}

func (s *threadedScheduler) spawn(name string, fn func(stop <-chan struct{})) *Worker {
	return spawn(name, fn)
}

func (s *threadedScheduler) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *threadedScheduler) withLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *threadedScheduler) shutdown() {}
