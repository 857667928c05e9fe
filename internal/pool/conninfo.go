package pool

import (
	"context"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"sqlxpool/internal/driver"
	"sqlxpool/internal/logging"
)

// connCounter assigns the process-wide monotonic suffix used in conn-N
// names. Advisory only; gaps are expected across pool restarts.
var connCounter int64

func nextConnName() string {
	n := atomic.AddInt64(&connCounter, 1)
	return "conn-" + strconv.FormatInt(n, 10)
}

// connInfo wraps a driver.Conn with the lifecycle metadata the pool and
// Monitor use to decide whether a connection may be reused, renewed, or
// must be evicted. None of its fields are mutated outside the pool's lock,
// except expiresAt which closeConn() and renewExpireAt() touch directly on the
// connInfo the caller currently owns.
type connInfo struct {
	name      string
	conn      driver.Conn
	keepAlive time.Duration
	startAt   time.Time
	expiresAt time.Time
}

func newConnInfo(c driver.Conn, keepAlive time.Duration) *connInfo {
	now := time.Now()
	return &connInfo{
		name:      nextConnName(),
		conn:      c,
		keepAlive: keepAlive,
		startAt:   now,
		expiresAt: now.Add(jitter(keepAlive, -0.05, 0.0)),
	}
}

// jitter returns value scaled by a random factor in [1+minPc, 1+maxPc).
// The band is intentionally one-sided (minPc < 0, maxPc = 0, as both
// callers pass it) so the result never exceeds value — early recycling,
// never late.
func jitter(value time.Duration, minPc, maxPc float64) time.Duration {
	factor := 1.0 + minPc + (maxPc-minPc)*rand.Float64()
	return time.Duration(float64(value) * factor)
}

// renewExpireAt recomputes expiresAt with a fresh jitter draw. Called by
// the Monitor when it finds an idle connection past its soft deadline.
func (c *connInfo) renewExpireAt() {
	c.expiresAt = time.Now().Add(jitter(c.keepAlive, -0.05, 0.0))
}

// expired reports whether the soft expiresAt deadline has passed.
func (c *connInfo) expired() bool {
	return c.expiresAt.Before(time.Now())
}

// healthy asks the driver whether the underlying connection still answers.
// Cheap and non-throwing per the driver contract; failures never
// propagate, they only steer the caller toward eviction.
func (c *connInfo) healthy(ctx context.Context) bool {
	return c.conn.IsHealthy(ctx)
}

// canReuse enforces the hard reuse ceiling: 4x keepAlive past start,
// regardless of renewals. Monotonically non-increasing over the
// connInfo's life — once false it never becomes true again.
func (c *connInfo) canReuse() bool {
	finish := c.startAt.Add(4 * c.keepAlive)
	return time.Now().Before(finish)
}

// reusable is the composite predicate the pool consults before readmitting
// a connection to idle.
func (c *connInfo) reusable(ctx context.Context) bool {
	return c.healthy(ctx) && c.conn.Connected() && c.canReuse()
}

// closeConn closes the underlying driver connection and stamps expiresAt
// as the close time, then logs the connection's total age.
func (c *connInfo) closeConn(ctx context.Context, log logging.Logger) {
	_ = c.conn.Close(ctx)
	c.expiresAt = time.Now()
	if log != nil {
		log.Debug("connection removed from pool",
			"name", c.name,
			"age_seconds", c.expiresAt.Sub(c.startAt).Seconds(),
		)
	}
}
