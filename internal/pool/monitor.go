package pool

import (
	"context"
)

// monitor is the periodic background sweeper described in spec.md §4.3.
// It never opens new connections — only the acquisition path and startup
// fill grow the pool; the monitor only shrinks or rotates.
//
// The weak back-reference spec.md calls for ("a non-owning handle
// resolved each tick; if unresolvable, the monitor exits") has no direct
// Go equivalent — Go has no weak references. Per Design Note §9's own
// fallback and SPEC_FULL.md §9, this is modeled as a context.Context
// owned by the pool: the monitor exits as soon as p.ctx is cancelled,
// which happens exactly once, from Pool.Stop.
type monitor struct {
	pool *Pool
}

func newMonitor(p *Pool) *monitor {
	return &monitor{pool: p}
}

func (m *monitor) run(stop <-chan struct{}) {
	p := m.pool
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-stop:
			return
		default:
		}

		m.tick()

		if err := p.sched.sleep(p.ctx, p.checkInterval); err != nil {
			return
		}
	}
}

// tick processes exactly one snapshot of the idle deque, per spec.md §5's
// "one-pass snapshot" requirement: it must not loop forever within one
// tick even if enqueues happen concurrently.
func (m *monitor) tick() {
	p := m.pool
	p.sched.withLock(func() {
		if p.state != statePoolOpened || p.size == 0 {
			return
		}

		n := p.idle.Len()
		for i := 0; i < n; i++ {
			front := p.idle.Front()
			if front == nil {
				break
			}
			p.idle.Remove(front)
			c := front.Value.(*connInfo)

			switch {
			case !c.healthy(context.Background()):
				p.log.Debug("monitor evicting unhealthy connection", "name", c.name)
				p.delConnLocked(c)

			case p.size > p.maxSize:
				// See spec.md Design Note §9: the composite eviction
				// predicate's left clause (min_size > size < max_size) is
				// dead/inverted in the over-capacity branch and is not
				// evaluated. Only size > max_size is acted on: the
				// connection is evicted and the state is logged as a
				// consistency signal. The monitor never grows the pool.
				p.log.Warn("monitor evicting over-capacity connection",
					"name", c.name, "size", p.size, "max_size", p.maxSize)
				p.delConnLocked(c)

			case c.expired():
				c.renewExpireAt()
				p.idle.PushBack(c)

			default:
				p.idle.PushBack(c)
			}
		}

		p.metrics.update(p.size, p.idle.Len(), p.maxSize)
	})
}
