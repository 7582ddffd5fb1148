package service

import (
	"context"
	"fmt"

	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/port/database"
)

// OrganizationService manages tenant-scoped organizations. Every read path
// goes through the caller's organization scope; the scope decides visibility,
// the service only applies it.
type OrganizationService struct{}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService() *OrganizationService {
	return &OrganizationService{}
}

// Create validates and creates an organization.
func (s *OrganizationService) Create(ctx context.Context, store database.TenantData, req organization.CreateRequest) (*organization.Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return store.CreateOrganization(ctx, req)
}

// Get returns one organization, enforcing the caller's scope. A scoped-out
// id is an access violation, not a not-found: the record exists, the caller
// may not see it.
func (s *OrganizationService) Get(ctx context.Context, store database.TenantData, p principal.Principal, id string) (*organization.Organization, error) {
	if err := p.Scope.Validate(id); err != nil {
		return nil, err
	}
	return store.GetOrganization(ctx, id)
}

// List returns the organizations visible to the caller. requestedOrgID
// optionally narrows the listing to one organization, which the scope must
// cover.
func (s *OrganizationService) List(ctx context.Context, store database.TenantData, p principal.Principal, requestedOrgID string) ([]organization.Organization, error) {
	f, err := p.Scope.ListFilter(requestedOrgID)
	if err != nil {
		return nil, err
	}
	return store.ListOrganizations(ctx, f)
}

// Update modifies an organization the caller's scope covers.
func (s *OrganizationService) Update(ctx context.Context, store database.TenantData, p principal.Principal, id string, req organization.UpdateRequest) (*organization.Organization, error) {
	if err := p.Scope.Validate(id); err != nil {
		return nil, err
	}
	return store.UpdateOrganization(ctx, id, req)
}

// SetActive toggles an organization's soft-deletion flag.
func (s *OrganizationService) SetActive(ctx context.Context, store database.TenantData, p principal.Principal, id string, active bool) (*organization.Organization, error) {
	if err := p.Scope.Validate(id); err != nil {
		return nil, err
	}
	return store.SetOrganizationActive(ctx, id, active)
}

// Delete removes an organization the caller's scope covers.
func (s *OrganizationService) Delete(ctx context.Context, store database.TenantData, p principal.Principal, id string) error {
	if err := p.Scope.Validate(id); err != nil {
		return err
	}
	return store.DeleteOrganization(ctx, id)
}
