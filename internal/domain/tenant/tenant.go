// Package tenant defines the tenant directory domain model. A tenant is an
// isolated customer (a gym chain) with its own database and identity-provider
// applications.
package tenant

import (
	"errors"
	"regexp"
	"time"
)

// Status is the operational state of a tenant.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// ValidStatuses is the set of all valid tenant statuses.
var ValidStatuses = map[Status]bool{
	StatusActive:    true,
	StatusSuspended: true,
}

// Tenant is one record in the tenant directory. Slug and AuthTenantID are
// immutable identity fields, each unique across all records. DatabaseName is
// derived from the slug at creation time and stored for traceability.
type Tenant struct {
	ID            string            `json:"id"`
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	AuthTenantID  string            `json:"auth_tenant_id"`
	AuthClientIDs map[string]string `json:"auth_client_ids,omitempty"` // surface slug -> IdP application id
	Status        Status            `json:"status"`
	Plan          string            `json:"plan"`
	DatabaseName  string            `json:"database_name"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Active reports whether the tenant may serve traffic.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// slugPattern: lowercase alphanumeric plus hyphen, must start and end with an
// alphanumeric. Length is checked separately (3-50).
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// ValidateSlug checks the tenant slug format: lowercase alphanumeric and
// hyphens, 3-50 characters, no leading or trailing hyphen.
func ValidateSlug(slug string) error {
	if len(slug) < 3 || len(slug) > 50 {
		return errors.New("slug must be 3-50 characters")
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("slug must be lowercase alphanumeric with hyphens")
	}
	return nil
}

// CreateRequest holds the fields required to create a new tenant. The auth
// fields are filled in during provisioning, not by the caller.
type CreateRequest struct {
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	AuthTenantID  string            `json:"-"`
	AuthClientIDs map[string]string `json:"-"`
	Plan          string            `json:"plan,omitempty"`
}

// Validate checks the caller-supplied fields of the CreateRequest.
func (r *CreateRequest) Validate() error {
	if err := ValidateSlug(r.Slug); err != nil {
		return err
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateRequest holds the mutable operational fields of a tenant.
// Identity fields (slug, auth tenant id, database name) cannot change.
type UpdateRequest struct {
	Name   string `json:"name,omitempty"`
	Status Status `json:"status,omitempty"`
	Plan   string `json:"plan,omitempty"`
}

// Validate checks that the UpdateRequest only carries valid values.
func (r *UpdateRequest) Validate() error {
	if r.Status != "" && !ValidStatuses[r.Status] {
		return errors.New("status must be active or suspended")
	}
	return nil
}
