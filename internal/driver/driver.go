// Package driver defines the minimal contract the connection pool needs
// from a physical database connection, and provides concrete adapters for
// the engine's four supported backends (SQLite, PostgreSQL, MySQL, SQL
// Server). The pool only ever calls Connect, Close, IsHealthy, and
// Connected — query execution, transactions, and row parsing live above
// this layer and are out of scope here.
package driver

import "context"

// Conn is the external collaborator contract the pool depends on. Health
// checks must be cheap and must never panic or propagate driver errors to
// the caller; an unhealthy connection is simply reported false.
type Conn interface {
	// Connect opens the physical connection against the DSN it was built
	// with.
	Connect(ctx context.Context) error

	// Close closes the physical connection. Idempotent.
	Close(ctx context.Context) error

	// IsHealthy reports whether the connection currently answers. Cheap,
	// non-throwing: implementations must swallow their own errors.
	IsHealthy(ctx context.Context) bool

	// Connected reports the last known connect/close state.
	Connected() bool
}

// Opener builds a fresh, unconnected Conn for a DSN. The pool calls
// Connect itself immediately after Open returns.
type Opener func(dsn string) (Conn, error)
