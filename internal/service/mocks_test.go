package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/domain/user"
	"github.com/fitstack/fitstack/internal/port/database"
	"github.com/fitstack/fitstack/internal/port/idp"
	"github.com/fitstack/fitstack/internal/port/messagequeue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Compile-time interface checks for the mocks.
var (
	_ database.Directory  = (*mockDirectory)(nil)
	_ database.TenantData = (*mockTenantData)(nil)
	_ idp.Provisioner     = (*mockIDP)(nil)
	_ TenantAdmin         = (*mockAdmin)(nil)
)

// mockDirectory is a minimal in-memory tenant directory.
type mockDirectory struct {
	tenants []tenant.Tenant

	createErr error
	deleteErr error
}

func (m *mockDirectory) CreateTenant(_ context.Context, req tenant.CreateRequest, databaseName string) (*tenant.Tenant, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	t := tenant.Tenant{
		ID:            fmt.Sprintf("tn-%d", len(m.tenants)+1),
		Slug:          req.Slug,
		Name:          req.Name,
		AuthTenantID:  req.AuthTenantID,
		AuthClientIDs: req.AuthClientIDs,
		Status:        tenant.StatusActive,
		Plan:          req.Plan,
		DatabaseName:  databaseName,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.tenants = append(m.tenants, t)
	return &t, nil
}

func (m *mockDirectory) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDirectory) GetTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].Slug == slug {
			return &m.tenants[i], nil
		}
	}
	return nil, &tenant.NotFoundError{Slug: slug}
}

func (m *mockDirectory) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	return m.tenants, nil
}

func (m *mockDirectory) UpdateTenant(_ context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			if req.Name != "" {
				m.tenants[i].Name = req.Name
			}
			if req.Status != "" {
				m.tenants[i].Status = req.Status
			}
			if req.Plan != "" {
				m.tenants[i].Plan = req.Plan
			}
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDirectory) DeleteTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			t := m.tenants[i]
			m.tenants = append(m.tenants[:i], m.tenants[i+1:]...)
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDirectory) Ping(context.Context) error { return nil }

// mockAdmin records provisioning steps and injects failures.
type mockAdmin struct {
	created  []string
	dropped  []string
	migrated []string
	seeded   []string

	createErr  error
	migrateErr error
	seedErr    error
}

func (m *mockAdmin) CreateDatabase(_ context.Context, name string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, name)
	return nil
}

func (m *mockAdmin) DropDatabase(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	return nil
}

func (m *mockAdmin) MigrateTenant(_ context.Context, database string) error {
	if m.migrateErr != nil {
		return m.migrateErr
	}
	m.migrated = append(m.migrated, database)
	return nil
}

func (m *mockAdmin) SeedRoles(_ context.Context, database string, _ []role.Config) error {
	if m.seedErr != nil {
		return m.seedErr
	}
	m.seeded = append(m.seeded, database)
	return nil
}

// mockIDP records identity-provider calls and injects failures.
type mockIDP struct {
	provisioned   []string
	deprovisioned []string
	registered    []string

	provisionErr error
	registerErr  error
}

func (m *mockIDP) ProvisionTenant(_ context.Context, slug, _ string) (*idp.TenantResources, error) {
	if m.provisionErr != nil {
		return nil, m.provisionErr
	}
	m.provisioned = append(m.provisioned, slug)
	return &idp.TenantResources{
		AuthTenantID: "auth-" + slug,
		ClientIDs: map[string]string{
			string(role.SurfaceDashboard): "app-dash-" + slug,
			string(role.SurfaceWebapp):    "app-web-" + slug,
		},
	}, nil
}

func (m *mockIDP) DeprovisionTenant(_ context.Context, authTenantID string) error {
	m.deprovisioned = append(m.deprovisioned, authTenantID)
	return nil
}

func (m *mockIDP) RegisterUser(_ context.Context, _, subjectID, _ string, _ role.Access) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	m.registered = append(m.registered, subjectID)
	return nil
}

// mockQueue records published subjects.
type mockQueue struct {
	published []string
}

func (m *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	m.published = append(m.published, subject)
	return nil
}

func (m *mockQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

// mockRegistry records evictions.
type mockRegistry struct {
	evicted []string
}

func (m *mockRegistry) Evict(database string) {
	m.evicted = append(m.evicted, database)
}

// mockInvalidator records cache invalidations.
type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) Invalidate(_ context.Context, slug string) {
	m.invalidated = append(m.invalidated, slug)
}

// mockTenantData is a minimal in-memory tenant database.
type mockTenantData struct {
	orgs    []organization.Organization
	configs []role.Config
	regs    []user.Registration

	upsertErr error
}

func (m *mockTenantData) CreateOrganization(_ context.Context, req organization.CreateRequest) (*organization.Organization, error) {
	o := organization.Organization{
		ID:     fmt.Sprintf("org-%d", len(m.orgs)+1),
		Slug:   req.Slug,
		Name:   req.Name,
		Active: true,
	}
	m.orgs = append(m.orgs, o)
	return &o, nil
}

func (m *mockTenantData) GetOrganization(_ context.Context, id string) (*organization.Organization, error) {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			return &m.orgs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantData) ListOrganizations(_ context.Context, f principal.Filter) ([]organization.Organization, error) {
	if f.All {
		return m.orgs, nil
	}
	allowed := make(map[string]bool, len(f.OrgIDs))
	for _, id := range f.OrgIDs {
		allowed[id] = true
	}
	var out []organization.Organization
	for _, o := range m.orgs {
		if allowed[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockTenantData) UpdateOrganization(_ context.Context, id string, req organization.UpdateRequest) (*organization.Organization, error) {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			if req.Name != "" {
				m.orgs[i].Name = req.Name
			}
			return &m.orgs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantData) SetOrganizationActive(_ context.Context, id string, active bool) (*organization.Organization, error) {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			m.orgs[i].Active = active
			return &m.orgs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantData) DeleteOrganization(_ context.Context, id string) error {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			m.orgs = append(m.orgs[:i], m.orgs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockTenantData) ListRoleConfigs(_ context.Context) ([]role.Config, error) {
	return m.configs, nil
}

func (m *mockTenantData) GetRoleConfig(_ context.Context, slug string) (*role.Config, error) {
	for i := range m.configs {
		if m.configs[i].Slug == slug {
			return &m.configs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantData) CreateRoleConfig(_ context.Context, req role.CreateRequest) (*role.Config, error) {
	c := role.Config{
		ID:        fmt.Sprintf("rc-%d", len(m.configs)+1),
		Slug:      req.Slug,
		Name:      req.Name,
		Surfaces:  req.Surfaces,
		IsDefault: req.IsDefault,
		IsSuper:   req.IsSuper,
		IsActive:  true,
	}
	m.configs = append(m.configs, c)
	return &c, nil
}

func (m *mockTenantData) UpdateRoleConfig(_ context.Context, slug string, req role.UpdateRequest) (*role.Config, error) {
	for i := range m.configs {
		if m.configs[i].Slug == slug {
			if req.Name != "" {
				m.configs[i].Name = req.Name
			}
			if len(req.Surfaces) > 0 {
				m.configs[i].Surfaces = req.Surfaces
			}
			if req.IsActive != nil {
				m.configs[i].IsActive = *req.IsActive
			}
			return &m.configs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantData) DeleteRoleConfig(_ context.Context, slug string) error {
	for i := range m.configs {
		if m.configs[i].Slug == slug {
			m.configs = append(m.configs[:i], m.configs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockTenantData) SeedRoleConfigs(_ context.Context, configs []role.Config) error {
	m.configs = append(m.configs, configs...)
	return nil
}

func (m *mockTenantData) UpsertRegistration(_ context.Context, reg *user.Registration) (*user.Registration, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	for i := range m.regs {
		if m.regs[i].SubjectID == reg.SubjectID && m.regs[i].Surface == reg.Surface {
			m.regs[i].Email = reg.Email
			m.regs[i].Roles = reg.Roles
			return &m.regs[i], nil
		}
	}
	r := *reg
	r.ID = fmt.Sprintf("reg-%d", len(m.regs)+1)
	m.regs = append(m.regs, r)
	return &r, nil
}

func (m *mockTenantData) ListRegistrations(_ context.Context, subjectID string) ([]user.Registration, error) {
	var out []user.Registration
	for _, r := range m.regs {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}
