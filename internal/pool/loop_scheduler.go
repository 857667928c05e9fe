package pool

import (
	"context"
	"sync"
	"time"
)

// loopScheduler is the cooperative flavour: a single dedicated goroutine
// (the "actor") is the only one that touches idle/size/state until
// shutdown. withLock submits a closure to the actor's command channel and
// blocks the caller until the actor has run it — the direct Go analogue
// of Python's single-threaded asyncio event loop, where suspension points
// are channel operations instead of await. While the actor runs, the
// single-reader command queue is itself the lock, as described in
// SPEC_FULL.md §5; once the actor has exited, withLock falls back to
// fallbackMu.
type loopScheduler struct {
	cmdCh        chan func()
	stopCh       chan struct{}
	doneCh       chan struct{}
	shutdownOnce sync.Once

	// fallbackMu serializes withLock calls that arrive after the actor
	// has already exited (see withLock below).
	fallbackMu sync.Mutex
}

func newLoopScheduler() *loopScheduler {
	s := &loopScheduler{
		cmdCh:  make(chan func()),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.actor()
	return s
}

func (s *loopScheduler) actor() {
	defer close(s.doneCh)
	for {
		select {
		case fn := <-s.cmdCh:
			fn()
		case <-s.stopCh:
			return
		}
	}
}

func (s *loopScheduler) spawn(name string, fn func(stop <-chan struct{})) *Worker {
	return spawn(name, fn)
}

func (s *loopScheduler) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withLock submits fn to the actor and blocks until it has run. Stop
// calls shutdown() while the pool must still answer Release/Acquire
// with ErrPoolClosed, so once the actor has exited, a send on cmdCh
// would block forever — withLock instead races the send against doneCh
// and, if the actor is already gone, runs fn inline under fallbackMu so
// concurrent post-shutdown callers still serialize against each other.
func (s *loopScheduler) withLock(fn func()) {
	done := make(chan struct{})
	select {
	case s.cmdCh <- func() {
		fn()
		close(done)
	}:
		<-done
	case <-s.doneCh:
		s.fallbackMu.Lock()
		defer s.fallbackMu.Unlock()
		fn()
	}
}

func (s *loopScheduler) shutdown() {
	s.shutdownOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
