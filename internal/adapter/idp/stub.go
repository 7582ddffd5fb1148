package idp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/port/idp"
)

// Stub fabricates identity-provider resources locally. It backs development
// and test deployments that run without a real provider; provisioned tenants
// get deterministic-looking but meaningless auth ids.
type Stub struct {
	log *slog.Logger
}

// NewStub creates a stub provisioner.
func NewStub(log *slog.Logger) *Stub {
	return &Stub{log: log}
}

func (s *Stub) ProvisionTenant(_ context.Context, slug, _ string) (*idp.TenantResources, error) {
	clientIDs := make(map[string]string, len(role.ValidSurfaces))
	for surface := range role.ValidSurfaces {
		clientIDs[string(surface)] = uuid.NewString()
	}
	res := &idp.TenantResources{
		AuthTenantID: "stub-" + slug + "-" + uuid.NewString()[:8],
		ClientIDs:    clientIDs,
	}
	s.log.Warn("stub idp provisioned tenant, tokens will not verify against a real provider", "slug", slug)
	return res, nil
}

func (s *Stub) DeprovisionTenant(_ context.Context, authTenantID string) error {
	s.log.Info("stub idp deprovisioned tenant", "auth_tenant_id", authTenantID)
	return nil
}

func (s *Stub) RegisterUser(_ context.Context, authTenantID, subjectID, _ string, _ role.Access) error {
	s.log.Info("stub idp registered user", "auth_tenant_id", authTenantID, "subject_id", subjectID)
	return nil
}
