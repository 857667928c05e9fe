package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"sqlxpool/internal/driver"
)

// fakeConn is a driver.Conn test double mirroring the teacher's
// mockConnection in connection_pool_test.go: an in-memory connection
// whose health and connect/close behavior tests can steer directly.
type fakeConn struct {
	mu         sync.Mutex
	connected  bool
	healthy    bool
	connectErr error
	closeErr   error
}

var fakeConnCounter int32

func newFakeOpener() driver.Opener {
	return func(dsn string) (driver.Conn, error) {
		atomic.AddInt32(&fakeConnCounter, 1)
		return &fakeConn{healthy: true}, nil
	}
}

func newFailingOpener(err error) driver.Opener {
	return func(dsn string) (driver.Conn, error) {
		return nil, err
	}
}

func (c *fakeConn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return c.closeErr
}

func (c *fakeConn) IsHealthy(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) setHealthy(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
}

var errFakeConnect = errors.New("fakeConn: connect failed")
