package service

import (
	"context"
	"fmt"

	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/port/database"
)

// RoleConfigService manages a tenant's role configuration.
type RoleConfigService struct{}

// NewRoleConfigService creates a new RoleConfigService.
func NewRoleConfigService() *RoleConfigService {
	return &RoleConfigService{}
}

// List returns every role config in the tenant.
func (s *RoleConfigService) List(ctx context.Context, store database.TenantData) ([]role.Config, error) {
	return store.ListRoleConfigs(ctx)
}

// Get returns one role config by slug.
func (s *RoleConfigService) Get(ctx context.Context, store database.TenantData, slug string) (*role.Config, error) {
	return store.GetRoleConfig(ctx, slug)
}

// Create validates and creates a custom role config.
func (s *RoleConfigService) Create(ctx context.Context, store database.TenantData, req role.CreateRequest) (*role.Config, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return store.CreateRoleConfig(ctx, req)
}

// Update modifies a role config. Deactivating a role (IsActive false) removes
// it from future surface derivations without deleting assignments.
func (s *RoleConfigService) Update(ctx context.Context, store database.TenantData, slug string, req role.UpdateRequest) (*role.Config, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return store.UpdateRoleConfig(ctx, slug, req)
}

// Delete removes a role config.
func (s *RoleConfigService) Delete(ctx context.Context, store database.TenantData, slug string) error {
	return store.DeleteRoleConfig(ctx, slug)
}
