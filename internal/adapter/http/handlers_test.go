package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	fshttp "github.com/fitstack/fitstack/internal/adapter/http"
	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/domain/user"
	"github.com/fitstack/fitstack/internal/middleware"
	"github.com/fitstack/fitstack/internal/port/database"
	"github.com/fitstack/fitstack/internal/port/idp"
	"github.com/fitstack/fitstack/internal/service"
)

var _ database.TenantData = (*mockTenantData)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTenantData is an in-memory tenant database.
type mockTenantData struct {
	orgs    []organization.Organization
	configs []role.Config
	regs    []user.Registration
}

func (m *mockTenantData) CreateOrganization(_ context.Context, req organization.CreateRequest) (*organization.Organization, error) {
	org := organization.Organization{
		ID:     fmt.Sprintf("org-%d", len(m.orgs)+1),
		Slug:   req.Slug,
		Name:   req.Name,
		Active: true,
	}
	m.orgs = append(m.orgs, org)
	return &org, nil
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
	var out []organization.Organization
	for _, org := range m.orgs {
		for _, id := range f.OrgIDs {
			if org.ID == id {
				out = append(out, org)
			}
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
	cfg := role.Config{
		ID:       fmt.Sprintf("role-%d", len(m.configs)+1),
		Slug:     req.Slug,
		Name:     req.Name,
		Surfaces: req.Surfaces,
		IsActive: true,
	}
	m.configs = append(m.configs, cfg)
	return &cfg, nil
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
	for i := range m.regs {
		if m.regs[i].SubjectID == reg.SubjectID && m.regs[i].Surface == reg.Surface {
			m.regs[i].Roles = reg.Roles
			return &m.regs[i], nil
		}
	}
	stored := *reg
	stored.ID = fmt.Sprintf("reg-%d", len(m.regs)+1)
	m.regs = append(m.regs, stored)
	return &stored, nil
}

func (m *mockTenantData) ListRegistrations(_ context.Context, subjectID string) ([]user.Registration, error) {
	var out []user.Registration
	for _, reg := range m.regs {
		if reg.SubjectID == subjectID {
			out = append(out, reg)
		}
	}
	return out, nil
}

// mockIDP satisfies idp.Provisioner for user provisioning.
type mockIDP struct{}

func (mockIDP) ProvisionTenant(_ context.Context, slug, _ string) (*idp.TenantResources, error) {
	return &idp.TenantResources{AuthTenantID: "auth-" + slug}, nil
}

func (mockIDP) DeprovisionTenant(_ context.Context, _ string) error { return nil }

func (mockIDP) RegisterUser(_ context.Context, _, _, _ string, _ role.Access) error { return nil }

// testServer wires the handlers behind fake tenant-plane middleware that
// injects a fixed tenant, store, and principal.
func testServer(t *testing.T, store *mockTenantData, p principal.Principal) (*chi.Mux, *fshttp.Handlers) {
	t.Helper()

	ten := &tenant.Tenant{
		ID:           "tid-1",
		Slug:         "acme-gym",
		Name:         "Acme Gym",
		Status:       tenant.StatusActive,
		DatabaseName: "tenant_acme_gym",
	}

	h := &fshttp.Handlers{
		Organizations: service.NewOrganizationService(),
		RoleConfigs:   service.NewRoleConfigService(),
		Users:         service.NewUserService(mockIDP{}, testLogger()),
		Auth:          service.NewAuthService(config.Auth{Enabled: true, Secret: "test-secret"}),
	}

	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.TenantCtxKeyForTest(), ten)
			ctx = context.WithValue(ctx, middleware.TenantDataCtxKeyForTest(), store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.PrincipalCtxKeyForTest(), &p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	fshttp.MountRoutes(r, h, fshttp.Middlewares{
		TenantContext: inject,
		Principal:     auth,
		DevTokens:     true,
	})
	return r, h
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Host = "acme-gym.fitstack.io"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func ownerPrincipal() principal.Principal {
	return principal.New("sub-owner", "owner@acme.test", []string{"owner"}, nil)
}

func TestCreateAndListOrganizations(t *testing.T) {
	store := &mockTenantData{}
	r, _ := testServer(t, store, ownerPrincipal())

	rec := doJSON(t, r, http.MethodPost, "/api/v1/orgs", organization.CreateRequest{
		Slug: "downtown",
		Name: "Downtown",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/orgs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var orgs []organization.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Slug != "downtown" {
		t.Errorf("orgs = %+v, want one downtown", orgs)
	}
}

func TestListOrganizations_ScopedPrincipalSeesSubset(t *testing.T) {
	store := &mockTenantData{orgs: []organization.Organization{
		{ID: "org-1", Slug: "downtown", Name: "Downtown", Active: true},
		{ID: "org-2", Slug: "uptown", Name: "Uptown", Active: true},
	}}
	coach := principal.New("sub-coach", "coach@acme.test", []string{"coach"}, []string{"org-2"})
	r, _ := testServer(t, store, coach)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/orgs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var orgs []organization.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orgs) != 1 || orgs[0].ID != "org-2" {
		t.Errorf("orgs = %+v, want only org-2", orgs)
	}
}

func TestGetOrganization_OutsideScope_Returns403(t *testing.T) {
	store := &mockTenantData{orgs: []organization.Organization{
		{ID: "org-1", Slug: "downtown", Active: true},
	}}
	member := principal.New("sub-m", "m@acme.test", []string{"member"}, []string{"org-9"})
	r, _ := testServer(t, store, member)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/orgs/org-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

type denialCounter struct {
	n int
}

func (d *denialCounter) AccessDenied(context.Context) { d.n++ }

func TestScopeDenialsAreCounted(t *testing.T) {
	store := &mockTenantData{orgs: []organization.Organization{
		{ID: "org-1", Slug: "downtown", Active: true},
	}}
	member := principal.New("sub-m", "m@acme.test", []string{"member"}, []string{"org-9"})
	r, h := testServer(t, store, member)

	denials := &denialCounter{}
	h.Denials = denials

	rec := doJSON(t, r, http.MethodGet, "/api/v1/orgs/org-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if denials.n != 1 {
		t.Errorf("denials = %d, want 1", denials.n)
	}

	// An allowed request does not count.
	rec = doJSON(t, r, http.MethodGet, "/api/v1/orgs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if denials.n != 1 {
		t.Errorf("denials after allowed request = %d, want 1", denials.n)
	}
}

func TestGetOrganization_Unknown_Returns404(t *testing.T) {
	store := &mockTenantData{}
	r, _ := testServer(t, store, ownerPrincipal())

	rec := doJSON(t, r, http.MethodGet, "/api/v1/orgs/org-nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateOrganization_MemberRole_Returns403(t *testing.T) {
	store := &mockTenantData{}
	member := principal.New("sub-m", "m@acme.test", []string{"member"}, nil)
	r, _ := testServer(t, store, member)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/orgs", organization.CreateRequest{
		Slug: "downtown",
		Name: "Downtown",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRoleConfigCRUD(t *testing.T) {
	store := &mockTenantData{}
	if err := store.SeedRoleConfigs(context.Background(), role.Templates()); err != nil {
		t.Fatal(err)
	}
	r, _ := testServer(t, store, ownerPrincipal())

	rec := doJSON(t, r, http.MethodGet, "/api/v1/roles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var configs []role.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &configs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(configs) != 5 {
		t.Fatalf("seeded configs = %d, want 5", len(configs))
	}

	rec = doJSON(t, r, http.MethodPut, "/api/v1/roles/coach", role.UpdateRequest{
		Surfaces: []role.Surface{role.SurfaceWebapp},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/roles/coach", nil)
	var cfg role.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cfg.Surfaces) != 1 || cfg.Surfaces[0] != role.SurfaceWebapp {
		t.Errorf("surfaces = %v, want [webapp]", cfg.Surfaces)
	}
}

func TestProvisionUser_WritesRegistrations(t *testing.T) {
	store := &mockTenantData{}
	if err := store.SeedRoleConfigs(context.Background(), role.Templates()); err != nil {
		t.Fatal(err)
	}
	r, _ := testServer(t, store, ownerPrincipal())

	rec := doJSON(t, r, http.MethodPost, "/api/v1/users", user.ProvisionRequest{
		SubjectID: "sub-42",
		Email:     "coach@acme.test",
		Roles:     []string{"coach"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var regs []user.Registration
	if err := json.Unmarshal(rec.Body.Bytes(), &regs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("registrations = %d, want dashboard and webapp", len(regs))
	}

	rec = doJSON(t, r, http.MethodGet, "/api/v1/users/sub-42/registrations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
}

func TestMintDevToken_RoundTrips(t *testing.T) {
	store := &mockTenantData{}
	r, h := testServer(t, store, ownerPrincipal())

	rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/dev-token", map[string]any{
		"subject_id": "sub-1",
		"email":      "dev@acme.test",
		"roles":      []string{"owner"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	p, err := h.Auth.VerifyAccessToken(resp.Token, "acme-gym")
	if err != nil {
		t.Fatalf("verify minted token: %v", err)
	}
	if p.SubjectID != "sub-1" {
		t.Errorf("subject = %q, want sub-1", p.SubjectID)
	}
}

func TestHealth(t *testing.T) {
	r, _ := testServer(t, &mockTenantData{}, ownerPrincipal())

	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
