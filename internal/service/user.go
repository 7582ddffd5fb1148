package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/domain/tenant"
	"github.com/fitstack/fitstack/internal/domain/user"
	"github.com/fitstack/fitstack/internal/port/database"
	"github.com/fitstack/fitstack/internal/port/idp"
)

// UserService provisions subjects into a tenant: derives their surface
// access from the tenant's role configuration, records surface registrations,
// and registers the subject with the identity provider.
type UserService struct {
	idp idp.Provisioner
	log *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(provisioner idp.Provisioner, log *slog.Logger) *UserService {
	return &UserService{idp: provisioner, log: log}
}

// Provision derives the subject's surface access and upserts one
// registration per granted surface. Provisioning is idempotent: re-running
// with changed roles replaces the previous per-surface role lists.
func (s *UserService) Provision(ctx context.Context, store database.TenantData, t *tenant.Tenant, req user.ProvisionRequest) ([]user.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	// Referenced organizations must exist before they land in a token scope.
	for _, orgID := range req.OrganizationIDs {
		if _, err := store.GetOrganization(ctx, orgID); err != nil {
			return nil, fmt.Errorf("organization %s: %w", orgID, err)
		}
	}

	configs, err := store.ListRoleConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list role configs: %w", err)
	}

	access := role.Derive(req.Roles, configs, req.SurfaceOverride)

	var regs []user.Registration
	for _, surface := range access.Surfaces() {
		reg, err := store.UpsertRegistration(ctx, &user.Registration{
			SubjectID: req.SubjectID,
			Email:     req.Email,
			Surface:   surface,
			Roles:     access[surface],
		})
		if err != nil {
			return nil, fmt.Errorf("register surface %s: %w", surface, err)
		}
		regs = append(regs, *reg)
	}

	if err := s.idp.RegisterUser(ctx, t.AuthTenantID, req.SubjectID, req.Email, access); err != nil {
		return nil, fmt.Errorf("register user with idp: %w", err)
	}

	s.log.Info("user provisioned", "subject", req.SubjectID, "tenant", t.Slug, "surfaces", len(regs))
	return regs, nil
}

// Registrations returns a subject's surface registrations in the tenant.
func (s *UserService) Registrations(ctx context.Context, store database.TenantData, subjectID string) ([]user.Registration, error) {
	return store.ListRegistrations(ctx, subjectID)
}
