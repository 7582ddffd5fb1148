// Package organization defines the tenant-scoped organization domain model.
// An organization is a location or branch within a tenant, e.g. one of a gym
// chain's physical sites.
package organization

import (
	"errors"
	"time"
)

// Organization is a tenant-scoped location record. Slug is unique within the
// tenant. Soft deletion goes through the Active flag; hard deletion removes
// the row.
type Organization struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest holds the fields required to create an organization.
type CreateRequest struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Slug == "" {
		return errors.New("slug is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on an organization.
type UpdateRequest struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}
