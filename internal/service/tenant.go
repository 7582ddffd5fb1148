package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/port/database"
	"github.com/fitstack/fitstack/internal/port/idp"
	"github.com/fitstack/fitstack/internal/port/messagequeue"
)

// Registry is the slice of the connection registry the tenant service needs:
// eviction of a deleted or updated tenant's pooled connection.
type Registry interface {
	Evict(database string)
}

// Invalidator drops a cached tenant resolution. Implemented by the resolver.
type Invalidator interface {
	Invalidate(ctx context.Context, slug string)
}

// TenantAdmin performs the database-level provisioning steps. Implemented in
// the postgres adapter; injected so lifecycle tests run without a server.
type TenantAdmin interface {
	CreateDatabase(ctx context.Context, name string) error
	DropDatabase(ctx context.Context, name string) error
	MigrateTenant(ctx context.Context, database string) error
	SeedRoles(ctx context.Context, database string, configs []role.Config) error
}

// TenantService manages tenant lifecycle: provisioning, directory CRUD, and
// deprovisioning.
type TenantService struct {
	dir      database.Directory
	admin    TenantAdmin
	registry Registry
	idp      idp.Provisioner
	queue    messagequeue.Queue // nil when messaging is disabled
	inval    Invalidator        // nil when no resolver cache is wired
	cfg      config.Tenants
	log      *slog.Logger
}

// NewTenantService creates a new TenantService. queue and inval may be nil.
func NewTenantService(dir database.Directory, admin TenantAdmin, reg Registry, provisioner idp.Provisioner, queue messagequeue.Queue, inval Invalidator, cfg config.Tenants, log *slog.Logger) *TenantService {
	return &TenantService{
		dir:      dir,
		admin:    admin,
		registry: reg,
		idp:      provisioner,
		queue:    queue,
		inval:    inval,
		cfg:      cfg,
		log:      log,
	}
}

// Provision creates a complete tenant: identity-provider resources, a fresh
// database with schema and seeded role templates, and the directory record.
// The directory record is written last so a tenant never resolves before its
// database is usable. On failure the already-created resources are cleaned up
// best-effort.
func (s *TenantService) Provision(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	dbName := tenant.DatabaseName(s.cfg.DatabasePrefix, req.Slug)
	if !tenant.ValidDatabaseName(s.cfg.DatabasePrefix, dbName) {
		return nil, fmt.Errorf("slug %q derives invalid database name %q", req.Slug, dbName)
	}

	res, err := s.idp.ProvisionTenant(ctx, req.Slug, req.Name)
	if err != nil {
		return nil, fmt.Errorf("provision idp tenant: %w", err)
	}
	req.AuthTenantID = res.AuthTenantID
	req.AuthClientIDs = res.ClientIDs

	if err := s.admin.CreateDatabase(ctx, dbName); err != nil {
		s.rollbackIDP(ctx, res.AuthTenantID)
		return nil, fmt.Errorf("create tenant database: %w", err)
	}

	if err := s.admin.MigrateTenant(ctx, dbName); err != nil {
		s.rollbackDatabase(ctx, dbName)
		s.rollbackIDP(ctx, res.AuthTenantID)
		return nil, fmt.Errorf("migrate tenant database: %w", err)
	}

	if err := s.admin.SeedRoles(ctx, dbName, role.Templates()); err != nil {
		s.rollbackDatabase(ctx, dbName)
		s.rollbackIDP(ctx, res.AuthTenantID)
		return nil, fmt.Errorf("seed role templates: %w", err)
	}

	t, err := s.dir.CreateTenant(ctx, req, dbName)
	if err != nil {
		s.rollbackDatabase(ctx, dbName)
		s.rollbackIDP(ctx, res.AuthTenantID)
		return nil, fmt.Errorf("create directory record: %w", err)
	}

	s.log.Info("tenant provisioned", "slug", t.Slug, "database", t.DatabaseName)
	return t, nil
}

// Get returns a tenant by ID.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.dir.GetTenant(ctx, id)
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.dir.ListTenants(ctx)
}

// Update modifies a tenant's operational fields and notifies peers so cached
// resolutions are dropped. Suspension takes effect on the next request to
// each instance.
func (s *TenantService) Update(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	t, err := s.dir.UpdateTenant(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.inval != nil {
		s.inval.Invalidate(ctx, t.Slug)
	}
	s.publishEvent(ctx, messagequeue.SubjectTenantUpdated, t)
	return t, nil
}

// Deprovision removes a tenant: the directory record first so no new request
// resolves it, then the pooled connection, the identity-provider resources,
// and (when dropData is set) the tenant database itself.
func (s *TenantService) Deprovision(ctx context.Context, id string, dropData bool) error {
	t, err := s.dir.DeleteTenant(ctx, id)
	if err != nil {
		return err
	}

	s.registry.Evict(t.DatabaseName)
	if s.inval != nil {
		s.inval.Invalidate(ctx, t.Slug)
	}
	s.publishEvent(ctx, messagequeue.SubjectTenantDeleted, t)

	if err := s.idp.DeprovisionTenant(ctx, t.AuthTenantID); err != nil {
		s.log.Warn("idp deprovision failed", "slug", t.Slug, "error", err)
	}

	if dropData {
		if err := s.admin.DropDatabase(ctx, t.DatabaseName); err != nil {
			s.log.Warn("drop tenant database failed", "database", t.DatabaseName, "error", err)
		}
	}

	s.log.Info("tenant deprovisioned", "slug", t.Slug, "drop_data", dropData)
	return nil
}

func (s *TenantService) publishEvent(ctx context.Context, subject string, t *tenant.Tenant) {
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(messagequeue.TenantEventPayload{
		TenantID:     t.ID,
		Slug:         t.Slug,
		DatabaseName: t.DatabaseName,
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, payload); err != nil {
		s.log.Warn("tenant event publish failed", "subject", subject, "slug", t.Slug, "error", err)
	}
}

func (s *TenantService) rollbackDatabase(ctx context.Context, name string) {
	if err := s.admin.DropDatabase(ctx, name); err != nil {
		s.log.Warn("provision rollback: drop database failed", "database", name, "error", err)
	}
}

func (s *TenantService) rollbackIDP(ctx context.Context, authTenantID string) {
	if err := s.idp.DeprovisionTenant(ctx, authTenantID); err != nil {
		s.log.Warn("provision rollback: idp deprovision failed", "auth_tenant_id", authTenantID, "error", err)
	}
}
