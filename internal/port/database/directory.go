// Package database defines the database store ports (interfaces).
package database

import (
	"context"

	"github.com/fitstack/fitstack/internal/domain/tenant"
)

// Directory is the port interface for the shared tenant directory store.
type Directory interface {
	// CreateTenant inserts a new tenant record with the derived database
	// name. Returns domain.ErrConflict when the slug or auth tenant id is
	// already taken.
	CreateTenant(ctx context.Context, req tenant.CreateRequest, databaseName string) (*tenant.Tenant, error)

	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)

	// GetTenantBySlug returns *tenant.NotFoundError (carrying the attempted
	// slug) when no record matches.
	GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)

	ListTenants(ctx context.Context) ([]tenant.Tenant, error)

	UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error)

	// DeleteTenant removes the record and returns the deleted snapshot so
	// the caller can evict the tenant's cached connection by database name.
	DeleteTenant(ctx context.Context, id string) (*tenant.Tenant, error)

	// Ping verifies the directory database is reachable.
	Ping(ctx context.Context) error
}
