package http

import (
	"net/http"

	"github.com/fitstack/fitstack/internal/domain/role"
)

// ListRoleConfigs handles GET /api/v1/roles
func (h *Handlers) ListRoleConfigs(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	configs, err := h.RoleConfigs.List(r.Context(), store)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if configs == nil {
		configs = []role.Config{}
	}
	writeJSON(w, http.StatusOK, configs)
}

// CreateRoleConfig handles POST /api/v1/roles
func (h *Handlers) CreateRoleConfig(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[role.CreateRequest](w, r)
	if !ok {
		return
	}

	cfg, err := h.RoleConfigs.Create(r.Context(), store, req)
	if err != nil {
		h.writeDomainError(w, r, err, "role not found")
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// GetRoleConfig handles GET /api/v1/roles/{slug}
func (h *Handlers) GetRoleConfig(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	cfg, err := h.RoleConfigs.Get(r.Context(), store, urlParam(r, "slug"))
	if err != nil {
		h.writeDomainError(w, r, err, "role not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateRoleConfig handles PUT /api/v1/roles/{slug}
func (h *Handlers) UpdateRoleConfig(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[role.UpdateRequest](w, r)
	if !ok {
		return
	}

	cfg, err := h.RoleConfigs.Update(r.Context(), store, urlParam(r, "slug"), req)
	if err != nil {
		h.writeDomainError(w, r, err, "role not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// DeleteRoleConfig handles DELETE /api/v1/roles/{slug}
func (h *Handlers) DeleteRoleConfig(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	if err := h.RoleConfigs.Delete(r.Context(), store, urlParam(r, "slug")); err != nil {
		h.writeDomainError(w, r, err, "role not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
