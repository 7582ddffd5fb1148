// Package role defines tenant role configuration and the derivation of
// application-surface access from role slugs.
package role

import (
	"errors"
	"time"
)

// Surface is a distinct client application with its own access grants.
type Surface string

const (
	SurfaceDashboard Surface = "dashboard" // staff/admin dashboard
	SurfaceWebapp    Surface = "webapp"    // end-user member app
)

// ValidSurfaces is the set of all supported application surfaces.
var ValidSurfaces = map[Surface]bool{
	SurfaceDashboard: true,
	SurfaceWebapp:    true,
}

// Config is a tenant-scoped role definition. It is initialized from the
// system role templates at provisioning time and may be customized per
// tenant afterwards.
type Config struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Surfaces  []Surface `json:"surfaces"`
	IsDefault bool      `json:"is_default"`
	IsSuper   bool      `json:"is_super"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest holds the fields required to create a role config.
type CreateRequest struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Surfaces  []Surface `json:"surfaces"`
	IsDefault bool      `json:"is_default"`
	IsSuper   bool      `json:"is_super"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Slug == "" {
		return errors.New("slug is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	for _, s := range r.Surfaces {
		if !ValidSurfaces[s] {
			return errors.New("invalid surface: must be dashboard or webapp")
		}
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on a role config.
type UpdateRequest struct {
	Name     string    `json:"name,omitempty"`
	Surfaces []Surface `json:"surfaces,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// Validate checks that the UpdateRequest only carries valid surfaces.
func (r *UpdateRequest) Validate() error {
	for _, s := range r.Surfaces {
		if !ValidSurfaces[s] {
			return errors.New("invalid surface: must be dashboard or webapp")
		}
	}
	return nil
}
