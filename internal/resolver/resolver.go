// Package resolver maps a request's host string to a tenant directory record.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/port/cache"
	"github.com/fitstack/fitstack/internal/port/database"
)

const cacheKeyPrefix = "tenant:slug:"

// Observer receives resolution outcome notifications. Implementations must
// be safe for concurrent use.
type Observer interface {
	ResolutionSucceeded(ctx context.Context, slug string)
	ResolutionFailed(ctx context.Context, reason string)
}

// Resolver resolves tenant slugs from request hosts against the tenant
// directory, with an optional read-through cache. Safe for concurrent use;
// it holds no mutable state of its own.
type Resolver struct {
	dir      database.Directory
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
	devSlug  string
	devHosts []string
	obs      Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables a read-through cache for directory lookups. Entries are
// invalidated explicitly on tenant mutation and expire after ttl as a
// backstop.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithDevOverride substitutes a fixed slug when the host matches one of the
// given patterns (exact hostname or "*.suffix"). Supports tunnel and loopback
// environments without subdomain DNS. Development only.
func WithDevOverride(slug string, hosts []string) Option {
	return func(r *Resolver) {
		r.devSlug = slug
		r.devHosts = hosts
	}
}

// WithObserver attaches a resolution outcome observer.
func WithObserver(obs Observer) Option {
	return func(r *Resolver) {
		r.obs = obs
	}
}

// New creates a Resolver backed by the given directory store.
func New(dir database.Directory, log *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{dir: dir, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFromHost maps a host to its tenant record. The leading host label up
// to the first dot is the candidate slug. A suspended tenant is still
// resolved; rejecting it is the tenant context middleware's decision, made in
// exactly one place.
func (r *Resolver) ResolveFromHost(ctx context.Context, host string) (*tenant.Tenant, error) {
	slug := r.candidateSlug(host)
	if slug == "" {
		r.observeFailure(ctx, "no_host")
		return nil, tenant.ErrNoHost
	}

	if t := r.cached(ctx, slug); t != nil {
		r.observeSuccess(ctx, slug)
		return t, nil
	}

	t, err := r.dir.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.observeFailure(ctx, "not_found")
		} else {
			r.observeFailure(ctx, "directory")
		}
		return nil, err
	}

	r.store(ctx, t)
	r.observeSuccess(ctx, slug)
	return t, nil
}

func (r *Resolver) observeSuccess(ctx context.Context, slug string) {
	if r.obs != nil {
		r.obs.ResolutionSucceeded(ctx, slug)
	}
}

func (r *Resolver) observeFailure(ctx context.Context, reason string) {
	if r.obs != nil {
		r.obs.ResolutionFailed(ctx, reason)
	}
}

// Invalidate drops the cached record for one slug. Called on tenant update
// and delete, locally and from the invalidation event subscriber.
func (r *Resolver) Invalidate(ctx context.Context, slug string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, cacheKeyPrefix+slug); err != nil {
		r.log.Warn("tenant cache invalidate failed", "slug", slug, "error", err)
	}
}

// candidateSlug extracts the candidate tenant slug from a host, applying the
// development override when the host matches a configured dev pattern.
func (r *Resolver) candidateSlug(host string) string {
	host = stripPort(host)
	if host == "" {
		return ""
	}
	if r.devSlug != "" && matchesAny(host, r.devHosts) {
		return r.devSlug
	}
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

func (r *Resolver) cached(ctx context.Context, slug string) *tenant.Tenant {
	if r.cache == nil {
		return nil
	}
	data, ok, err := r.cache.Get(ctx, cacheKeyPrefix+slug)
	if err != nil || !ok {
		return nil
	}
	var t tenant.Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil
	}
	return &t
}

func (r *Resolver) store(ctx context.Context, t *tenant.Tenant) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKeyPrefix+t.Slug, data, r.cacheTTL); err != nil {
		r.log.Warn("tenant cache store failed", "slug", t.Slug, "error", err)
	}
}

// stripPort removes a trailing :port from a host string.
func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i+1:], "]") {
		return host[:i]
	}
	return host
}

// matchesAny reports whether host matches one of the patterns. A pattern is
// either an exact hostname or a "*.suffix" wildcard.
func matchesAny(host string, patterns []string) bool {
	for _, p := range patterns {
		if suffix, ok := strings.CutPrefix(p, "*."); ok {
			if strings.HasSuffix(host, "."+suffix) {
				return true
			}
			continue
		}
		if host == p {
			return true
		}
	}
	return false
}
