package pool

import (
	"context"
	"testing"
	"time"
)

func TestNewConnInfo_ExpiresAtWithinJitterBand(t *testing.T) {
	keepAlive := 1 * time.Second
	c := newConnInfo(&fakeConn{healthy: true, connected: true}, keepAlive)

	lower := c.startAt.Add(time.Duration(0.95 * float64(keepAlive)))
	upper := c.startAt.Add(keepAlive)

	if c.expiresAt.Before(lower) || c.expiresAt.After(upper) {
		t.Fatalf("expiresAt %v outside [%v, %v]", c.expiresAt, lower, upper)
	}
}

func TestRenewExpireAt_StaysWithinBandAndNeverExceedsStartPlusKeepAlive(t *testing.T) {
	keepAlive := 1 * time.Second
	c := newConnInfo(&fakeConn{healthy: true, connected: true}, keepAlive)

	c.renewExpireAt()

	lower := c.startAt.Add(time.Duration(0.95 * float64(keepAlive)))
	if c.expiresAt.Before(lower) {
		t.Fatalf("renewed expiresAt %v below startAt+0.95*keepAlive %v", c.expiresAt, lower)
	}
	if c.expiresAt.After(c.startAt.Add(keepAlive)) {
		t.Fatalf("renewed expiresAt %v exceeds startAt+keepAlive %v", c.expiresAt, c.startAt.Add(keepAlive))
	}
}

func TestExpired(t *testing.T) {
	c := newConnInfo(&fakeConn{healthy: true, connected: true}, time.Second)
	c.expiresAt = time.Now().Add(-time.Millisecond)
	if !c.expired() {
		t.Fatal("expected expired() to be true once expiresAt has passed")
	}

	c.expiresAt = time.Now().Add(time.Hour)
	if c.expired() {
		t.Fatal("expected expired() to be false while expiresAt is in the future")
	}
}

func TestCanReuse_MonotonicallyNonIncreasing(t *testing.T) {
	keepAlive := 10 * time.Millisecond
	c := newConnInfo(&fakeConn{healthy: true, connected: true}, keepAlive)

	if !c.canReuse() {
		t.Fatal("expected canReuse() to be true immediately after creation")
	}

	c.startAt = time.Now().Add(-5 * keepAlive)
	if c.canReuse() {
		t.Fatal("expected canReuse() to be false past the 4x keepAlive hard ceiling")
	}

	// Once false, it must never become true again, even as time passes.
	time.Sleep(time.Millisecond)
	if c.canReuse() {
		t.Fatal("canReuse() flipped back to true; must be monotonically non-increasing")
	}
}

func TestReusable_RequiresHealthyConnectedAndWithinCeiling(t *testing.T) {
	ctx := context.Background()
	fc := &fakeConn{healthy: true, connected: true}
	c := newConnInfo(fc, time.Second)

	if !c.reusable(ctx) {
		t.Fatal("expected a fresh, healthy, connected connInfo to be reusable")
	}

	fc.setHealthy(false)
	if c.reusable(ctx) {
		t.Fatal("expected reusable() to be false once the driver reports unhealthy")
	}

	fc.setHealthy(true)
	c.startAt = time.Now().Add(-10 * time.Second)
	if c.reusable(ctx) {
		t.Fatal("expected reusable() to be false past the hard reuse ceiling")
	}
}
