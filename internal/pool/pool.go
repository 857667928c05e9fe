// Package pool implements the connection pool core: lifecycle, eviction,
// and acquisition state machine shared by a cooperative single-loop
// scheduler flavour and a preemptive multi-goroutine flavour. Both
// flavours run the exact same Pool struct and algorithms; they differ
// only in the scheduler implementation (see scheduler.go).
package pool

import (
	"container/list"
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sqlxpool/internal/driver"
	poolerrors "sqlxpool/internal/errors"
	"sqlxpool/internal/logging"
)

var poolCounter int64

func nextPoolName() string {
	n := atomic.AddInt64(&poolCounter, 1)
	return "pool-" + strconv.FormatInt(n, 10)
}

// Pool is the public facade described in spec.md §4.1. Exactly one
// instance per process-visible pool; construct with New.
type Pool struct {
	name string
	uri  string

	minSize       int
	maxSize       int
	connTimeout   time.Duration
	keepAlive     time.Duration
	checkInterval time.Duration

	opener  driver.Opener
	sched   scheduler
	log     *logging.EnhancedLogger
	metrics *metricsSet

	ctx    context.Context
	cancel context.CancelFunc

	// Fields below are only ever touched inside sched.withLock.
	idle    *list.List
	size    int
	state   poolState
	workers []*Worker
}

// Option configures a Pool at construction time.
type Option func(*poolOptions)

type poolOptions struct {
	connTimeout       time.Duration
	keepAlive         time.Duration
	checkInterval     time.Duration
	cooperative       bool
	metricsRegisterer prometheus.Registerer
	logger            *logging.EnhancedLogger
}

// WithConnTimeout overrides the default 30s acquisition deadline.
func WithConnTimeout(d time.Duration) Option {
	return func(o *poolOptions) { o.connTimeout = d }
}

// WithKeepAlive overrides the default 900s soft connection lifetime.
func WithKeepAlive(d time.Duration) Option {
	return func(o *poolOptions) { o.keepAlive = d }
}

// WithCheckInterval overrides the default 5s monitor tick period.
func WithCheckInterval(d time.Duration) Option {
	return func(o *poolOptions) { o.checkInterval = d }
}

// WithCooperativeScheduler selects the single-actor-goroutine scheduler
// (the Go analogue of the Python asyncio flavour) instead of the default
// plain-goroutines-plus-mutex scheduler.
func WithCooperativeScheduler() Option {
	return func(o *poolOptions) { o.cooperative = true }
}

// WithMetrics registers the pool's Prometheus gauges (connections_total,
// connections_idle, max_size) against reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *poolOptions) { o.metricsRegisterer = reg }
}

// WithLogger overrides the pool's default logging.PoolLogger, e.g. with
// logging.NewNoOpEnhancedLogger to silence a test that drives eviction
// and startup-failure paths hard enough to flood stdout otherwise.
func WithLogger(log *logging.EnhancedLogger) Option {
	return func(o *poolOptions) { o.logger = log }
}

// New validates sizing and constructs a Pool against uri using opener to
// create physical connections. The pool is not started; call Start.
//
// Sizing policy, verbatim from spec.md §4.1: min_size <= 0 is invalid;
// max_size defaults to min_size when zero; max_size < min_size is invalid.
func New(uri string, minSize, maxSize int, opener driver.Opener, opts ...Option) (*Pool, error) {
	if minSize <= 0 {
		return nil, ErrInvalidSize
	}
	if maxSize == 0 {
		maxSize = minSize
	}
	if maxSize < minSize {
		return nil, ErrInvalidSize
	}

	o := &poolOptions{
		connTimeout:   30 * time.Second,
		keepAlive:     900 * time.Second,
		checkInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	name := nextPoolName()
	log := logging.PoolLogger
	if o.logger != nil {
		log = o.logger
	}

	if o.keepAlive < 60*time.Second {
		log.Warn("keep_alive is less than 60 seconds, this is not recommended",
			"pool", name, "keep_alive_seconds", o.keepAlive.Seconds())
	}

	var m *metricsSet
	if o.metricsRegisterer != nil {
		m = newMetricsSet(name)
		if err := m.register(o.metricsRegisterer); err != nil {
			return nil, fmt.Errorf("pool: registering metrics: %w", err)
		}
	}

	var sched scheduler
	if o.cooperative {
		sched = newLoopScheduler()
	} else {
		sched = newThreadedScheduler()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		name:          name,
		uri:           uri,
		minSize:       minSize,
		maxSize:       maxSize,
		connTimeout:   o.connTimeout,
		keepAlive:     o.keepAlive,
		checkInterval: o.checkInterval,
		opener:        opener,
		sched:         sched,
		log:           log,
		metrics:       m,
		ctx:           ctx,
		cancel:        cancel,
		idle:          list.New(),
		state:         statePoolClosed,
	}
	return p, nil
}

// Name returns the pool's process-unique, log-correlatable name.
func (p *Pool) Name() string { return p.name }

// Closed reports whether the pool is neither opened nor opening.
func (p *Pool) Closed() bool {
	var closed bool
	p.sched.withLock(func() {
		closed = p.state != statePoolOpened && p.state != statePoolOpening
	})
	return closed
}

// Stats is a point-in-time snapshot for observability and tests.
type Stats struct {
	Name    string
	State   string
	Size    int
	Idle    int
	MaxSize int
}

// Stats returns a consistent snapshot of the pool's current size, idle
// count, and state.
func (p *Pool) Stats() Stats {
	var s Stats
	p.sched.withLock(func() {
		s = Stats{
			Name:    p.name,
			State:   p.state.String(),
			Size:    p.size,
			Idle:    p.idle.Len(),
			MaxSize: p.maxSize,
		}
	})
	return s
}

// newConn opens a fresh driver connection against uri and wraps it in a
// connInfo. It never touches size itself — callers are responsible for
// counting the connInfo it returns, either by reserving a slot first
// (getReadyConn's on-demand growth path) or via putConn (the startup
// fill path).
func (p *Pool) newConn(ctx context.Context) (*connInfo, error) {
	c, err := p.opener(p.uri)
	if err != nil {
		p.log.WithError(poolerrors.WrapDriverError(err, "open"))
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		p.log.WithError(poolerrors.WrapDriverError(err, "connect"))
		return nil, err
	}
	return newConnInfo(c, p.keepAlive), nil
}

// delConnLocked closes c and decrements size. Must run inside
// sched.withLock.
func (p *Pool) delConnLocked(c *connInfo) {
	c.closeConn(context.Background(), p.log)
	p.size--
}

// putConnLocked is the unchecked putConn variant from spec.md §4.1: the
// caller already holds the lock and has verified pool state. countNew
// reports whether c has not yet been counted toward size (true for
// freshly created connections from the startup fill; false for a
// connection being returned after checkout, which was already counted
// when it was handed out, including one opened on demand by
// getReadyConn).
func (p *Pool) putConnLocked(ctx context.Context, c *connInfo, countNew bool) {
	if c.reusable(ctx) {
		p.idle.PushBack(c)
		if countNew {
			p.size++
		}
		return
	}

	wasCounted := !countNew
	c.closeConn(ctx, p.log)
	if wasCounted {
		p.size--
	}

	replacement, err := p.newConn(ctx)
	if err != nil {
		p.log.Warn("failed to open replacement connection after discard", "error", err.Error())
		return
	}
	p.idle.PushBack(replacement)
	p.size++
}

// putConnChecked is the checked putConn variant: it validates the pool
// is not closed before delegating to putConnLocked. Used by
// Conn.Release; the startup fill calls putConnLocked directly.
func (p *Pool) putConnChecked(ctx context.Context, c *connInfo, countNew bool) error {
	var err error
	p.sched.withLock(func() {
		if p.state == statePoolClosed || p.state == statePoolStopping {
			c.closeConn(ctx, p.log)
			if !countNew {
				p.size--
			}
			err = ErrPoolClosed
			return
		}
		p.putConnLocked(ctx, c, countNew)
		p.metrics.update(p.size, p.idle.Len(), p.maxSize)
	})
	return err
}

// getReadyConn is _get_ready_conn from spec.md §4.1: pop an idle
// connection if one exists; otherwise, if there is room to grow, reserve
// a size slot and open a new one; otherwise return nil, nil to signal
// "try again later".
//
// Per the Pool data model (size = idle + handed-out, spec.md §3), a
// connection handed straight to a caller without passing through idle
// must count toward size from the moment it is handed out, not only once
// it is eventually released — this is why the slot is reserved under
// the lock before the (unlocked, potentially slow) driver connect call,
// and rolled back if that call fails.
func (p *Pool) getReadyConn(ctx context.Context) (*connInfo, error) {
	var popped *connInfo
	var reserved bool
	p.sched.withLock(func() {
		if front := p.idle.Front(); front != nil {
			p.idle.Remove(front)
			popped = front.Value.(*connInfo)
			return
		}
		if p.size < p.maxSize {
			p.size++
			reserved = true
		}
	})

	if popped != nil {
		return popped, nil
	}
	if !reserved {
		return nil, nil
	}

	c, err := p.newConn(ctx)
	if err != nil {
		p.sched.withLock(func() { p.size-- })
		return nil, err
	}
	return c, nil
}

// getConn is _get_conn from spec.md §4.1: poll getReadyConn every 100ms
// until a connection is obtained or conn_timeout elapses.
func (p *Pool) getConn(ctx context.Context) (*connInfo, error) {
	deadline := time.Now().Add(p.connTimeout)
	for {
		if p.Closed() {
			return nil, ErrPoolClosed
		}

		c, err := p.getReadyConn(ctx)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrPoolTimeout
		}

		if err := p.sched.sleep(ctx, 100*time.Millisecond); err != nil {
			return nil, err
		}
	}
}

// Conn is a checked-out connection handle returned by Acquire. Exactly
// one caller owns a Conn at a time; the pool retains no alias to it
// until Release.
type Conn struct {
	pool     *Pool
	info     *connInfo
	released bool
}

// Raw returns the underlying driver connection.
func (c *Conn) Raw() driver.Conn {
	return c.info.conn
}

// Release returns the connection to the pool. Idempotent: calling it
// more than once is a no-op after the first call. A connection handed
// out by Acquire is always already counted toward size (see
// getReadyConn), so Release never re-increments it — only the startup
// fill path counts a connInfo for the first time.
func (c *Conn) Release(ctx context.Context) error {
	if c.released {
		return nil
	}
	c.released = true
	return c.pool.putConnChecked(ctx, c.info, false)
}

// Release returns c to p, rejecting it with ErrInvalidConn if c was
// acquired from a different pool instance. This is the pool-qualified
// counterpart to Conn.Release, for callers that hold a *Conn whose
// origin they cannot otherwise trust (e.g. relayed across an API
// boundary that only deals in *Conn, not in "the pool that issued it").
func (p *Pool) Release(ctx context.Context, c *Conn) error {
	if c.pool != p {
		return ErrInvalidConn
	}
	return c.Release(ctx)
}

// Acquire is the scoped acquisition entry point from spec.md §4.1
// ("connection()"). Fails with ErrPoolClosed if the pool is neither
// opened nor opening, or ErrPoolTimeout once conn_timeout elapses before
// a connection becomes free.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p.Closed() {
		return nil, ErrPoolClosed
	}
	info, err := p.getConn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{pool: p, info: info}, nil
}

// Connection acquires a connection, invokes fn, and releases the
// connection on every exit path (normal return, error return, or panic)
// — the Go realization of spec.md's scope-exit guarantee for
// connection().
func (p *Pool) Connection(ctx context.Context, fn func(ctx context.Context, c *Conn) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release(ctx)
	return fn(ctx, c)
}

// Start triggers the startup fill if the pool is not already started.
// Idempotent while a prior Start is still filling; fails with
// ErrPoolAlreadyStarted if the pool is already opened with size > 0.
func (p *Pool) Start(ctx context.Context) error {
	var runIt bool
	var err error

	p.sched.withLock(func() {
		switch p.state {
		case statePoolOpened:
			if p.size > 0 {
				err = ErrPoolAlreadyStarted
				return
			}
			p.state = statePoolOpening
			runIt = true
		case statePoolOpening:
			// Already filling; idempotent no-op for this caller.
		default:
			p.state = statePoolOpening
			runIt = true
		}
	})
	if err != nil {
		return err
	}
	if !runIt {
		return nil
	}

	return p.runStart(ctx)
}

// runStart is _start from spec.md §4.1: opens min_size connections and
// installs each via the unchecked putConn, then marks the pool opened
// and spawns its background workers. A failing newConn aborts the fill;
// opened remains false and the connections already installed remain in
// idle, matching spec.md §7's error-handling policy.
func (p *Pool) runStart(ctx context.Context) error {
	for i := 0; i < p.minSize; i++ {
		c, err := p.newConn(ctx)
		if err != nil {
			p.sched.withLock(func() { p.state = statePoolClosed })
			return err
		}
		p.sched.withLock(func() {
			p.putConnLocked(ctx, c, true)
		})
	}

	p.sched.withLock(func() {
		p.state = statePoolOpened
		p.metrics.update(p.size, p.idle.Len(), p.maxSize)
	})

	p.startWorkers()
	return nil
}

// startWorkers spawns the monitor task wrapped in a Worker, per
// spec.md §4.1's _start_workers. Every call appends a new monitor
// worker; one spawned by a Start after Stop returns at once, because
// Stop has already cancelled p.ctx.
func (p *Pool) startWorkers() {
	mon := newMonitor(p)
	w := p.sched.spawn(p.name+"-monitor", mon.run)
	p.sched.withLock(func() {
		p.workers = append(p.workers, w)
	})
}

// Stop drains idle, closes each idle connection, and marks the pool
// closed. Connections currently checked out are not force-closed; their
// eventual Release observes the closed state and discards them instead
// of readmitting them. Idempotent.
func (p *Pool) Stop(ctx context.Context) error {
	p.cancel()

	var workers []*Worker
	p.sched.withLock(func() {
		p.state = statePoolStopping
		for {
			front := p.idle.Front()
			if front == nil {
				break
			}
			p.idle.Remove(front)
			p.delConnLocked(front.Value.(*connInfo))
		}
		p.state = statePoolClosed
		p.metrics.update(p.size, p.idle.Len(), p.maxSize)
		workers = append(workers, p.workers...)
	})

	for _, w := range workers {
		w.Stop()
	}
	for _, w := range workers {
		_ = w.Join(ctx)
	}

	p.sched.shutdown()
	return nil
}
