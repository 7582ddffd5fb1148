package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitstack/fitstack/internal/adapter/postgres"
	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/logger"
	"github.com/fitstack/fitstack/internal/port/database"
	"github.com/fitstack/fitstack/internal/registry"
)

type tenantCtxKey struct{}
type tenantDataCtxKey struct{}

// TenantResolver resolves a request host to a tenant record.
type TenantResolver interface {
	ResolveFromHost(ctx context.Context, host string) (*tenant.Tenant, error)
}

// PoolSource hands out the pooled connection for a tenant database.
type PoolSource interface {
	Tenant(ctx context.Context, database string) (*pgxpool.Pool, error)
}

// TenantContext is the middleware that stamps every tenant-plane request
// with its tenant. It resolves the host to a directory record, rejects
// suspended tenants (the single place that decision is made), obtains the
// tenant's pooled connection, and attaches the tenant and its data store to
// the request context. Handlers below it never see an un-tenanted request.
func TenantContext(res TenantResolver, pools PoolSource, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			t, err := res.ResolveFromHost(ctx, r.Host)
			if err != nil {
				writeResolveError(w, r, log, err)
				return
			}

			if !t.Active() {
				writeResolveError(w, r, log, tenant.ErrSuspended)
				return
			}

			pool, err := pools.Tenant(ctx, t.DatabaseName)
			if err != nil {
				writePoolError(w, log, t, err)
				return
			}

			ctx = context.WithValue(ctx, tenantCtxKey{}, t)
			ctx = context.WithValue(ctx, tenantDataCtxKey{}, postgres.NewTenantStore(pool))
			ctx = logger.WithTenantSlug(ctx, t.Slug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext returns the resolved tenant, or nil outside the tenant
// plane.
func TenantFromContext(ctx context.Context) *tenant.Tenant {
	t, _ := ctx.Value(tenantCtxKey{}).(*tenant.Tenant)
	return t
}

// TenantDataFromContext returns the per-request tenant data store, or nil
// outside the tenant plane.
func TenantDataFromContext(ctx context.Context) database.TenantData {
	store, _ := ctx.Value(tenantDataCtxKey{}).(database.TenantData)
	return store
}

// TenantCtxKeyForTest returns the context key used for storing the tenant.
// Exported only for tests that need to inject one.
func TenantCtxKeyForTest() any {
	return tenantCtxKey{}
}

// TenantDataCtxKeyForTest returns the context key used for storing the
// tenant data store. Exported only for tests that need to inject one.
func TenantDataCtxKeyForTest() any {
	return tenantDataCtxKey{}
}

func writeResolveError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, tenant.ErrNoHost):
		http.Error(w, `{"error":"missing or invalid host"}`, http.StatusBadRequest)
	case errors.Is(err, tenant.ErrSuspended):
		http.Error(w, `{"error":"tenant suspended"}`, http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, `{"error":"unknown tenant"}`, http.StatusNotFound)
	default:
		log.Error("tenant resolution failed", "host", r.Host, "error", err)
		w.Header().Set("Retry-After", "5")
		http.Error(w, `{"error":"tenant directory unavailable"}`, http.StatusServiceUnavailable)
	}
}

func writePoolError(w http.ResponseWriter, log *slog.Logger, t *tenant.Tenant, err error) {
	var invalid *registry.InvalidNameError
	if errors.As(err, &invalid) {
		// A directory record carrying a bad database name is a corrupt
		// deployment, not a client problem.
		log.Error("tenant database name rejected", "slug", t.Slug, "database", t.DatabaseName)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	log.Error("tenant database unavailable", "slug", t.Slug, "database", t.DatabaseName, "error", err)
	w.Header().Set("Retry-After", "5")
	http.Error(w, `{"error":"tenant database unavailable"}`, http.StatusServiceUnavailable)
}
