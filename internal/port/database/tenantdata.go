package database

import (
	"context"

	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/user"
)

// TenantData is the port interface for one tenant's database. Implementations
// are plain structs parameterized by a connection handle; one instance is
// built per request by the tenant context middleware.
type TenantData interface {
	// Organizations
	CreateOrganization(ctx context.Context, req organization.CreateRequest) (*organization.Organization, error)
	GetOrganization(ctx context.Context, id string) (*organization.Organization, error)
	// ListOrganizations applies the principal's organization filter; an
	// unconstrained filter lists every organization in the tenant.
	ListOrganizations(ctx context.Context, f principal.Filter) ([]organization.Organization, error)
	UpdateOrganization(ctx context.Context, id string, req organization.UpdateRequest) (*organization.Organization, error)
	SetOrganizationActive(ctx context.Context, id string, active bool) (*organization.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	// Role configuration
	ListRoleConfigs(ctx context.Context) ([]role.Config, error)
	GetRoleConfig(ctx context.Context, slug string) (*role.Config, error)
	CreateRoleConfig(ctx context.Context, req role.CreateRequest) (*role.Config, error)
	UpdateRoleConfig(ctx context.Context, slug string, req role.UpdateRequest) (*role.Config, error)
	DeleteRoleConfig(ctx context.Context, slug string) error
	// SeedRoleConfigs copies the system role templates into a fresh tenant.
	SeedRoleConfigs(ctx context.Context, configs []role.Config) error

	// Surface registrations
	UpsertRegistration(ctx context.Context, reg *user.Registration) (*user.Registration, error)
	ListRegistrations(ctx context.Context, subjectID string) ([]user.Registration, error)
}
