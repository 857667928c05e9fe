package pool

import "errors"

var (
	// ErrPoolClosed is returned when an operation is attempted on a pool
	// that is not opened and not currently opening.
	ErrPoolClosed = errors.New("pool: pool is closed")

	// ErrPoolTimeout is returned from Acquire when conn_timeout elapses
	// before a connection becomes available.
	ErrPoolTimeout = errors.New("pool: timeout waiting for a connection")

	// ErrPoolAlreadyStarted is returned from Start when the pool is
	// already opened and holds at least one connection.
	ErrPoolAlreadyStarted = errors.New("pool: pool is already started")

	// ErrInvalidSize is returned from New when min_size/max_size fail
	// the sizing policy.
	ErrInvalidSize = errors.New("pool: invalid min_size/max_size")

	// ErrInvalidConn is returned when a *Conn handle is released to a
	// pool it was not acquired from.
	ErrInvalidConn = errors.New("pool: connection not owned by this pool")
)
