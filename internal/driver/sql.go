package driver

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sqlConn adapts a database/sql.DB pinned to a single physical connection
// (MaxOpenConns=1) to the Conn contract. This is the same trick the
// reference SQL Server pool in the retrieval pack uses: one *sql.DB per
// PooledConn so each Conn maps 1:1 onto one physical connection instead of
// database/sql silently pooling underneath us.
type sqlConn struct {
	driverName string
	dsn        string
	db         *sql.DB
	connected  bool
}

func newSQLConn(driverName, dsn string) (Conn, error) {
	return &sqlConn{driverName: driverName, dsn: dsn}, nil
}

func (c *sqlConn) Connect(ctx context.Context) error {
	db, err := sql.Open(c.driverName, c.dsn)
	if err != nil {
		return fmt.Errorf("driver: open %s: %w", c.driverName, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // lifetime is managed by the pool, not database/sql

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("driver: ping %s: %w", c.driverName, err)
	}

	c.db = db
	c.connected = true
	return nil
}

func (c *sqlConn) Close(ctx context.Context) error {
	if c.db == nil {
		c.connected = false
		return nil
	}
	err := c.db.Close()
	c.connected = false
	return err
}

func (c *sqlConn) IsHealthy(ctx context.Context) bool {
	if c.db == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.db.PingContext(pingCtx) == nil
}

func (c *sqlConn) Connected() bool {
	return c.connected
}

// DB exposes the underlying *sql.DB for the execution layer above the
// pool. Not part of the Conn contract; callers type-assert when they need
// to run a query against the connection they acquired.
func (c *sqlConn) DB() *sql.DB {
	return c.db
}
