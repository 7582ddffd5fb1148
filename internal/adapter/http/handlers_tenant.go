package http

import (
	"net/http"

	"github.com/fitstack/fitstack/internal/domain/tenant"
)

// Control-plane tenant administration. These routes operate directly on the
// tenant directory and never run behind the tenant context middleware.

// ListTenants handles GET /api/v1/admin/tenants
func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Tenants.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if tenants == nil {
		tenants = []tenant.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

// CreateTenant handles POST /api/v1/admin/tenants. It provisions the tenant
// end to end: IdP resources, database, migrations, role templates, directory
// record.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tenants.Provision(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTenant handles GET /api/v1/admin/tenants/{id}
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTenant handles PUT /api/v1/admin/tenants/{id}
func (h *Handlers) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tenants.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		h.writeDomainError(w, r, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTenant handles DELETE /api/v1/admin/tenants/{id}. The drop_data query
// parameter additionally drops the tenant database; by default the data is
// retained.
func (h *Handlers) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	dropData := r.URL.Query().Get("drop_data") == "true"

	if err := h.Tenants.Deprovision(r.Context(), urlParam(r, "id"), dropData); err != nil {
		h.writeDomainError(w, r, err, "tenant not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
