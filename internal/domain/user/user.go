// Package user defines surface registration records for principals. User
// identities live in the external identity provider; this package models only
// what the core stores per tenant: which application surfaces a subject is
// registered for, and which of their roles apply within each surface.
package user

import (
	"errors"
	"net/mail"
	"time"

	"github.com/fitstack/fitstack/internal/domain/role"
)

// Registration is one subject's registration on one application surface.
// Roles is the per-surface valid role list produced by role.Derive, not the
// subject's full role set.
type Registration struct {
	ID        string       `json:"id"`
	SubjectID string       `json:"subject_id"`
	Email     string       `json:"email"`
	Surface   role.Surface `json:"surface"`
	Roles     []string     `json:"roles"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProvisionRequest is the input for provisioning a subject into a tenant.
type ProvisionRequest struct {
	SubjectID       string         `json:"subject_id"`
	Email           string         `json:"email"`
	Roles           []string       `json:"roles"`
	OrganizationIDs []string       `json:"organization_ids,omitempty"`
	SurfaceOverride []role.Surface `json:"surface_override,omitempty"`
}

// Validate checks that the ProvisionRequest has all required fields.
func (r *ProvisionRequest) Validate() error {
	if r.SubjectID == "" {
		return errors.New("subject_id is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("invalid email format")
	}
	if len(r.Roles) == 0 {
		return errors.New("at least one role is required")
	}
	for _, s := range r.SurfaceOverride {
		if !role.ValidSurfaces[s] {
			return errors.New("invalid surface override: must be dashboard or webapp")
		}
	}
	return nil
}
