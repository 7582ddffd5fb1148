package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain/role"
)

// Admin implements service.TenantAdmin: database creation, schema migration,
// and role template seeding for tenant provisioning. It runs admin statements
// over the system pool and opens short-lived pools for per-tenant work.
type Admin struct {
	system *pgxpool.Pool
	cfg    config.Tenants
}

// NewAdmin creates a provisioning admin over the system pool.
func NewAdmin(system *pgxpool.Pool, cfg config.Tenants) *Admin {
	return &Admin{system: system, cfg: cfg}
}

func (a *Admin) CreateDatabase(ctx context.Context, name string) error {
	return CreateDatabase(ctx, a.system, name)
}

func (a *Admin) DropDatabase(ctx context.Context, name string) error {
	return DropDatabase(ctx, a.system, name)
}

func (a *Admin) MigrateTenant(ctx context.Context, database string) error {
	return RunTenantMigrations(ctx, a.cfg, database)
}

// SeedRoles writes the role templates into a fresh tenant database through a
// short-lived pool. The registry's cached pool is not used: at provisioning
// time the tenant does not resolve yet, so nothing else holds a connection.
func (a *Admin) SeedRoles(ctx context.Context, database string, configs []role.Config) error {
	pool, err := NewTenantPool(ctx, a.cfg, database)
	if err != nil {
		return fmt.Errorf("open %s for seeding: %w", database, err)
	}
	defer pool.Close()

	return NewTenantStore(pool).SeedRoleConfigs(ctx, configs)
}
