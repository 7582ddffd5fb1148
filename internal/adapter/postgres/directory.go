package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/tenant"
)

// DirectoryStore implements database.Directory over the shared system
// database.
type DirectoryStore struct {
	pool *pgxpool.Pool
}

// NewDirectoryStore creates a directory store backed by the system pool.
func NewDirectoryStore(pool *pgxpool.Pool) *DirectoryStore {
	return &DirectoryStore{pool: pool}
}

const tenantColumns = `id, slug, name, auth_tenant_id, auth_client_ids, status, plan, database_name, created_at, updated_at`

func (s *DirectoryStore) CreateTenant(ctx context.Context, req tenant.CreateRequest, databaseName string) (*tenant.Tenant, error) {
	clientIDs, err := json.Marshal(req.AuthClientIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal auth_client_ids: %w", err)
	}
	plan := req.Plan
	if plan == "" {
		plan = "standard"
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (slug, name, auth_tenant_id, auth_client_ids, plan, database_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+tenantColumns,
		req.Slug, req.Name, req.AuthTenantID, clientIDs, plan, databaseName)

	t, err := scanTenant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create tenant %s: %w", req.Slug, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create tenant %s: %w", req.Slug, err)
	}
	return &t, nil
}

func (s *DirectoryStore) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return &t, nil
}

// GetTenantBySlug is the resolver's lookup. No rows yields a typed
// *tenant.NotFoundError carrying the attempted slug.
func (s *DirectoryStore) GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &tenant.NotFoundError{Slug: slug}
		}
		return nil, fmt.Errorf("get tenant by slug %s: %w", slug, err)
	}
	return &t, nil
}

func (s *DirectoryStore) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *DirectoryStore) UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants SET
		   name = COALESCE(NULLIF($2, ''), name),
		   status = COALESCE(NULLIF($3, ''), status),
		   plan = COALESCE(NULLIF($4, ''), plan),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING `+tenantColumns,
		id, req.Name, string(req.Status), req.Plan)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update tenant %s: %w", id, err)
	}
	return &t, nil
}

// DeleteTenant removes the directory record and returns the deleted snapshot
// so the caller can evict the cached connection and clean up the database.
func (s *DirectoryStore) DeleteTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`DELETE FROM tenants WHERE id = $1 RETURNING `+tenantColumns, id)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("delete tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete tenant %s: %w", id, err)
	}
	return &t, nil
}

func (s *DirectoryStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanTenant(row scannable) (tenant.Tenant, error) {
	var t tenant.Tenant
	var clientIDs []byte
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.AuthTenantID, &clientIDs,
		&t.Status, &t.Plan, &t.DatabaseName, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if len(clientIDs) > 0 {
		if err := json.Unmarshal(clientIDs, &t.AuthClientIDs); err != nil {
			return t, fmt.Errorf("unmarshal auth_client_ids: %w", err)
		}
	}
	return t, nil
}
