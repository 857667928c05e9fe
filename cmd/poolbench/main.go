// Command poolbench builds a connection pool against a real driver,
// fills it, drives a handful of concurrent acquisitions, and prints
// Stats() — a runnable demonstration of the pool's external interface
// and of the boundary between its plain sentinel errors and the
// service-facing internal/errors.StandardError wrapping.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"sqlxpool/internal/config"
	"sqlxpool/internal/driver"
	poolerrors "sqlxpool/internal/errors"
	"sqlxpool/internal/pool"
)

func main() {
	cfg := config.DefaultPoolConfig()
	cfg.URI = "file::memory:?cache=shared"
	cfg.Backend = driver.SQLite
	cfg.MinSize = 2
	cfg.MaxSize = 4
	cfg.ConnTimeout = 2 * time.Second
	cfg.CheckInterval = 500 * time.Millisecond

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid pool config: %v", err)
	}

	opener, err := driver.Lookup(cfg.Backend)
	if err != nil {
		log.Fatalf("unknown driver backend: %v", err)
	}

	p, err := pool.New(cfg.URI, cfg.MinSize, cfg.MaxSize, opener,
		pool.WithConnTimeout(cfg.ConnTimeout),
		pool.WithKeepAlive(cfg.KeepAlive),
		pool.WithCheckInterval(cfg.CheckInterval),
	)
	if err != nil {
		log.Fatalf("failed to construct pool: %v", err)
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		log.Fatalf("failed to start pool: %v", err)
	}
	defer p.Stop(ctx)

	fmt.Printf("started %s: %+v\n", p.Name(), p.Stats())

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			acquireCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
			defer cancel()

			err := p.Connection(acquireCtx, func(ctx context.Context, c *pool.Conn) error {
				time.Sleep(50 * time.Millisecond)
				return nil
			})
			if err != nil {
				svcErr := wrapAcquireError(err)
				fmt.Printf("acquisition %d failed: %s (http=%d)\n", n, svcErr.Error(), svcErr.ToHTTPStatus())
				return
			}
			fmt.Printf("acquisition %d succeeded\n", n)
		}(i)
	}
	wg.Wait()

	fmt.Printf("final stats: %+v\n", p.Stats())
}

// wrapAcquireError demonstrates the documented boundary: internal/pool
// returns plain sentinel errors; only the service-facing edge translates
// them into the heavier internal/errors.StandardError shape.
func wrapAcquireError(err error) *poolerrors.StandardError {
	switch err {
	case pool.ErrPoolTimeout:
		return poolerrors.NewStandardError(poolerrors.ErrorCodePoolTimeout, "timed out waiting for a connection", nil)
	case pool.ErrPoolClosed:
		return poolerrors.NewStandardError(poolerrors.ErrorCodePoolClosed, "pool is closed", nil)
	default:
		return poolerrors.NewInternalError("connection acquisition failed", err)
	}
}
