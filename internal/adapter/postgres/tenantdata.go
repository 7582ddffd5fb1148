package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitstack/fitstack/internal/domain"
	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/user"
)

// TenantStore implements database.TenantData over one tenant's database.
// It is a thin stateless wrapper; build one per request around the pool the
// connection registry returns.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a tenant data store backed by the given pool.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

// --- Organizations ---

const orgColumns = `id, slug, name, active, email, phone, address, city, country, created_at, updated_at`

func (s *TenantStore) CreateOrganization(ctx context.Context, req organization.CreateRequest) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO organizations (slug, name, email, phone, address, city, country)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+orgColumns,
		req.Slug, req.Name, req.Email, req.Phone, req.Address, req.City, req.Country)

	o, err := scanOrganization(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create organization %s: %w", req.Slug, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create organization %s: %w", req.Slug, err)
	}
	return &o, nil
}

func (s *TenantStore) GetOrganization(ctx context.Context, id string) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)

	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get organization %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get organization %s: %w", id, err)
	}
	return &o, nil
}

// ListOrganizations applies the principal's organization filter. An
// unconstrained filter lists everything; otherwise only the filter's ids.
func (s *TenantStore) ListOrganizations(ctx context.Context, f principal.Filter) ([]organization.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations ORDER BY name ASC`
	args := []any{}
	if !f.All {
		query = `SELECT ` + orgColumns + ` FROM organizations WHERE id = ANY($1::uuid[]) ORDER BY name ASC`
		args = append(args, textArray(f.OrgIDs))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []organization.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (s *TenantStore) UpdateOrganization(ctx context.Context, id string, req organization.UpdateRequest) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE organizations SET
		   name = COALESCE(NULLIF($2, ''), name),
		   email = COALESCE(NULLIF($3, ''), email),
		   phone = COALESCE(NULLIF($4, ''), phone),
		   address = COALESCE(NULLIF($5, ''), address),
		   city = COALESCE(NULLIF($6, ''), city),
		   country = COALESCE(NULLIF($7, ''), country),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING `+orgColumns,
		id, req.Name, req.Email, req.Phone, req.Address, req.City, req.Country)

	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update organization %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update organization %s: %w", id, err)
	}
	return &o, nil
}

func (s *TenantStore) SetOrganizationActive(ctx context.Context, id string, active bool) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE organizations SET active = $2, updated_at = now()
		 WHERE id = $1 RETURNING `+orgColumns, id, active)

	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("set organization active %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("set organization active %s: %w", id, err)
	}
	return &o, nil
}

func (s *TenantStore) DeleteOrganization(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete organization %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanOrganization(row scannable) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.Slug, &o.Name, &o.Active, &o.Email, &o.Phone,
		&o.Address, &o.City, &o.Country, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// --- Role configuration ---

const roleColumns = `id, slug, name, surfaces, is_default, is_super, is_active, created_at, updated_at`

func (s *TenantStore) ListRoleConfigs(ctx context.Context) ([]role.Config, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM role_configs ORDER BY slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("list role configs: %w", err)
	}
	defer rows.Close()

	var configs []role.Config
	for rows.Next() {
		c, err := scanRoleConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (s *TenantStore) GetRoleConfig(ctx context.Context, slug string) (*role.Config, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM role_configs WHERE slug = $1`, slug)

	c, err := scanRoleConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get role config %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get role config %s: %w", slug, err)
	}
	return &c, nil
}

func (s *TenantStore) CreateRoleConfig(ctx context.Context, req role.CreateRequest) (*role.Config, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO role_configs (slug, name, surfaces, is_default, is_super)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roleColumns,
		req.Slug, req.Name, surfaceStrings(req.Surfaces), req.IsDefault, req.IsSuper)

	c, err := scanRoleConfig(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create role config %s: %w", req.Slug, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create role config %s: %w", req.Slug, err)
	}
	return &c, nil
}

func (s *TenantStore) UpdateRoleConfig(ctx context.Context, slug string, req role.UpdateRequest) (*role.Config, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE role_configs SET
		   name = COALESCE(NULLIF($2, ''), name),
		   surfaces = CASE WHEN cardinality($3::text[]) = 0 THEN surfaces ELSE $3::text[] END,
		   is_active = COALESCE($4, is_active),
		   updated_at = now()
		 WHERE slug = $1
		 RETURNING `+roleColumns,
		slug, req.Name, surfaceStrings(req.Surfaces), req.IsActive)

	c, err := scanRoleConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update role config %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update role config %s: %w", slug, err)
	}
	return &c, nil
}

func (s *TenantStore) DeleteRoleConfig(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM role_configs WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete role config %s: %w", slug, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete role config %s: %w", slug, domain.ErrNotFound)
	}
	return nil
}

// SeedRoleConfigs copies the system role templates into a fresh tenant in one
// transaction. Existing slugs are left untouched so re-provisioning is safe.
func (s *TenantStore) SeedRoleConfigs(ctx context.Context, configs []role.Config) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, c := range configs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_configs (slug, name, surfaces, is_default, is_super, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (slug) DO NOTHING`,
			c.Slug, c.Name, surfaceStrings(c.Surfaces), c.IsDefault, c.IsSuper, c.IsActive); err != nil {
			return fmt.Errorf("seed role config %s: %w", c.Slug, err)
		}
	}
	return tx.Commit(ctx)
}

func scanRoleConfig(row scannable) (role.Config, error) {
	var c role.Config
	var surfaces []string
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &surfaces, &c.IsDefault, &c.IsSuper,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Surfaces = toSurfaces(surfaces)
	return c, nil
}

// --- Surface registrations ---

const registrationColumns = `id, subject_id, email, surface, roles, created_at, updated_at`

// UpsertRegistration inserts or replaces a subject's registration for one
// surface. The (subject_id, surface) pair is unique.
func (s *TenantStore) UpsertRegistration(ctx context.Context, reg *user.Registration) (*user.Registration, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO registrations (subject_id, email, surface, roles)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (subject_id, surface) DO UPDATE SET
		   email = EXCLUDED.email,
		   roles = EXCLUDED.roles,
		   updated_at = now()
		 RETURNING `+registrationColumns,
		reg.SubjectID, reg.Email, string(reg.Surface), textArray(reg.Roles))

	r, err := scanRegistration(row)
	if err != nil {
		return nil, fmt.Errorf("upsert registration %s/%s: %w", reg.SubjectID, reg.Surface, err)
	}
	return &r, nil
}

func (s *TenantStore) ListRegistrations(ctx context.Context, subjectID string) ([]user.Registration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE subject_id = $1 ORDER BY surface ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []user.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func scanRegistration(row scannable) (user.Registration, error) {
	var r user.Registration
	var surface string
	err := row.Scan(&r.ID, &r.SubjectID, &r.Email, &surface, &r.Roles,
		&r.CreatedAt, &r.UpdatedAt)
	r.Surface = role.Surface(surface)
	return r, err
}
