package http

import (
	"net/http"

	"github.com/fitstack/fitstack/internal/domain/organization"
	"github.com/fitstack/fitstack/internal/domain/principal"
	"github.com/fitstack/fitstack/internal/middleware"
	"github.com/fitstack/fitstack/internal/port/database"
)

// tenantRequest pulls the tenant data store and principal the middleware
// chain attached. Both are always present on tenant-plane routes; a miss
// means a route was mounted outside the chain.
func tenantRequest(w http.ResponseWriter, r *http.Request) (database.TenantData, *principal.Principal, bool) {
	store := middleware.TenantDataFromContext(r.Context())
	p := middleware.PrincipalFromContext(r.Context())
	if store == nil || p == nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, nil, false
	}
	return store, p, true
}

// ListOrganizations handles GET /api/v1/orgs. The optional org_id query
// parameter narrows the list to one organization; the principal's scope
// constrains the result either way.
func (h *Handlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	store, p, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	orgs, err := h.Organizations.List(r.Context(), store, *p, r.URL.Query().Get("org_id"))
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	if orgs == nil {
		orgs = []organization.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// CreateOrganization handles POST /api/v1/orgs
func (h *Handlers) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[organization.CreateRequest](w, r)
	if !ok {
		return
	}

	org, err := h.Organizations.Create(r.Context(), store, req)
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// GetOrganization handles GET /api/v1/orgs/{id}
func (h *Handlers) GetOrganization(w http.ResponseWriter, r *http.Request) {
	store, p, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	org, err := h.Organizations.Get(r.Context(), store, *p, urlParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// UpdateOrganization handles PUT /api/v1/orgs/{id}
func (h *Handlers) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	store, p, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[organization.UpdateRequest](w, r)
	if !ok {
		return
	}

	org, err := h.Organizations.Update(r.Context(), store, *p, urlParam(r, "id"), req)
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// SetOrganizationActive handles PUT /api/v1/orgs/{id}/active with body
// {"active": bool} for soft deactivation and reactivation.
func (h *Handlers) SetOrganizationActive(w http.ResponseWriter, r *http.Request) {
	store, p, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[struct {
		Active bool `json:"active"`
	}](w, r)
	if !ok {
		return
	}

	org, err := h.Organizations.SetActive(r.Context(), store, *p, urlParam(r, "id"), req.Active)
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/v1/orgs/{id}
func (h *Handlers) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	store, p, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	if err := h.Organizations.Delete(r.Context(), store, *p, urlParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
