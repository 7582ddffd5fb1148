// Package idp defines the port for the external identity provider. The
// provider's protocol is out of scope for the core; provisioning flows talk
// to it only through this interface.
package idp

import (
	"context"

	"github.com/fitstack/fitstack/internal/domain/role"
)

// TenantResources are the identity-provider records backing one tenant.
type TenantResources struct {
	AuthTenantID string
	// ClientIDs maps each application surface slug to its IdP application id.
	ClientIDs map[string]string
}

// Provisioner creates and removes identity-provider resources.
type Provisioner interface {
	// ProvisionTenant creates the IdP tenant and one application per
	// supported surface.
	ProvisionTenant(ctx context.Context, slug, name string) (*TenantResources, error)

	// DeprovisionTenant removes the IdP tenant and its applications.
	DeprovisionTenant(ctx context.Context, authTenantID string) error

	// RegisterUser attaches a subject to the tenant's surface applications
	// with the per-surface role lists produced by role derivation.
	RegisterUser(ctx context.Context, authTenantID, subjectID, email string, access role.Access) error
}
