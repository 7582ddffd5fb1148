// Package registry owns every pooled database connection in the process: the
// singleton pool for the tenant directory and one lazily created pool per
// tenant database. It is the single source of truth for "give me a usable
// handle for database X" and the only place that mutates the pool cache.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/fitstack/fitstack/internal/adapter/postgres"
	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain/tenant"
)

// systemKey is the singleflight key for the directory pool. A leading NUL
// cannot appear in a valid tenant database name, so it can never collide.
const systemKey = "\x00system"

// maxConcurrentDials bounds how many new pools may be establishing at once,
// so a burst of first requests across many cold tenants cannot exhaust file
// descriptors or stampede the database server.
const maxConcurrentDials = 8

// OpenFunc establishes a pooled connection for one database name. The
// directory opener ignores the name.
type OpenFunc func(ctx context.Context, database string) (*pgxpool.Pool, error)

// Observer receives pool lifecycle notifications. Implementations must be
// safe for concurrent use.
type Observer interface {
	PoolOpened(ctx context.Context, database string)
	PoolClosed(ctx context.Context, database string)
}

// Registry is the concurrency-safe cache of pooled connections. Construct it
// once at process start and pass it by reference; it holds the only global
// mutable state in the core.
type Registry struct {
	prefix     string
	log        *slog.Logger
	obs        Observer
	openSystem OpenFunc
	openTenant OpenFunc
	dialSem    *semaphore.Weighted

	group singleflight.Group

	mu     sync.RWMutex
	system *pgxpool.Pool
	pools  map[string]*pgxpool.Pool
	closed bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithSystemOpener overrides how the directory pool is established.
func WithSystemOpener(open OpenFunc) Option {
	return func(r *Registry) { r.openSystem = open }
}

// WithTenantOpener overrides how tenant pools are established.
func WithTenantOpener(open OpenFunc) Option {
	return func(r *Registry) { r.openTenant = open }
}

// WithObserver attaches a pool lifecycle observer.
func WithObserver(obs Observer) Option {
	return func(r *Registry) { r.obs = obs }
}

// New creates a Registry. No connections are established until first use.
func New(dirCfg config.Directory, tenantCfg config.Tenants, log *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		prefix:  tenantCfg.DatabasePrefix,
		log:     log,
		dialSem: semaphore.NewWeighted(maxConcurrentDials),
		pools:   make(map[string]*pgxpool.Pool),
		openSystem: func(ctx context.Context, _ string) (*pgxpool.Pool, error) {
			return postgres.NewDirectoryPool(ctx, dirCfg)
		},
	}
	r.openTenant = func(ctx context.Context, database string) (*pgxpool.Pool, error) {
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tenantCfg.DialTimeout)
		defer cancel()
		return postgres.NewTenantPool(dialCtx, tenantCfg, database)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// System returns the handle to the tenant directory database, establishing it
// on first call. Concurrent first callers share a single establishment
// attempt; a failed attempt is not cached, so the next call retries.
func (r *Registry) System(ctx context.Context) (*pgxpool.Pool, error) {
	r.mu.RLock()
	pool, closed := r.system, r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if pool != nil {
		return pool, nil
	}

	v, err, _ := r.group.Do(systemKey, func() (any, error) {
		r.mu.RLock()
		pool, closed := r.system, r.closed
		r.mu.RUnlock()
		if closed {
			return nil, ErrClosed
		}
		if pool != nil {
			return pool, nil
		}

		pool, openErr := r.openSystem(ctx, "")
		if openErr != nil {
			return nil, &UnavailableError{Database: "directory", Err: openErr}
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			pool.Close()
			return nil, ErrClosed
		}
		r.system = pool
		r.mu.Unlock()

		r.log.Info("directory pool opened")
		if r.obs != nil {
			r.obs.PoolOpened(ctx, "directory")
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// Tenant returns the pooled handle for one tenant database, opening it on
// first access. The name must match the tenant database naming convention.
// Establishment is collapsed per database name: concurrent first requests for
// the same new name share one dial, while requests for different names
// proceed independently. Failures are returned, never cached.
func (r *Registry) Tenant(ctx context.Context, database string) (*pgxpool.Pool, error) {
	if !tenant.ValidDatabaseName(r.prefix, database) {
		return nil, &InvalidNameError{Name: database}
	}

	r.mu.RLock()
	pool, closed := r.pools[database], r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if pool != nil {
		return pool, nil
	}

	v, err, _ := r.group.Do(database, func() (any, error) {
		r.mu.RLock()
		pool, closed := r.pools[database], r.closed
		r.mu.RUnlock()
		if closed {
			return nil, ErrClosed
		}
		if pool != nil {
			return pool, nil
		}

		if semErr := r.dialSem.Acquire(ctx, 1); semErr != nil {
			return nil, &UnavailableError{Database: database, Err: semErr}
		}
		defer r.dialSem.Release(1)

		pool, openErr := r.openTenant(ctx, database)
		if openErr != nil {
			r.log.Warn("tenant pool open failed", "database", database, "error", openErr)
			return nil, &UnavailableError{Database: database, Err: openErr}
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			pool.Close()
			return nil, ErrClosed
		}
		r.pools[database] = pool
		r.mu.Unlock()

		r.log.Info("tenant pool opened", "database", database)
		if r.obs != nil {
			r.obs.PoolOpened(ctx, database)
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// Evict closes and removes one cached tenant pool. Used after tenant deletion
// so a future request for a reused database name opens a fresh pool instead
// of returning a closed handle. The caller is responsible for ensuring no
// requests for this tenant are still in flight.
func (r *Registry) Evict(database string) {
	r.group.Forget(database)

	r.mu.Lock()
	pool := r.pools[database]
	delete(r.pools, database)
	r.mu.Unlock()

	if pool == nil {
		return
	}
	pool.Close()
	r.log.Info("tenant pool evicted", "database", database)
	if r.obs != nil {
		r.obs.PoolClosed(context.Background(), database)
	}
}

// CloseAll closes the directory pool and every cached tenant pool. Used only
// at process shutdown, after requests have drained. Idempotent.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	system := r.system
	pools := r.pools
	r.system = nil
	r.pools = make(map[string]*pgxpool.Pool)
	r.mu.Unlock()

	for database, pool := range pools {
		pool.Close()
		if r.obs != nil {
			r.obs.PoolClosed(context.Background(), database)
		}
	}
	if system != nil {
		system.Close()
		if r.obs != nil {
			r.obs.PoolClosed(context.Background(), "directory")
		}
	}
	r.log.Info("connection registry closed", "tenant_pools", len(pools))
}
