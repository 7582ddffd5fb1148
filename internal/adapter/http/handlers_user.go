package http

import (
	"net/http"

	"github.com/fitstack/fitstack/internal/domain/user"
	"github.com/fitstack/fitstack/internal/middleware"
)

// ProvisionUser handles POST /api/v1/users. It derives the subject's
// application surfaces from their roles, writes one registration row per
// surface, and registers the subject with the identity provider.
func (h *Handlers) ProvisionUser(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}
	t := middleware.TenantFromContext(r.Context())
	req, ok := readJSON[user.ProvisionRequest](w, r)
	if !ok {
		return
	}

	regs, err := h.Users.Provision(r.Context(), store, t, req)
	if err != nil {
		h.writeDomainError(w, r, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusCreated, regs)
}

// ListUserRegistrations handles GET /api/v1/users/{subjectId}/registrations
func (h *Handlers) ListUserRegistrations(w http.ResponseWriter, r *http.Request) {
	store, _, ok := tenantRequest(w, r)
	if !ok {
		return
	}

	regs, err := h.Users.Registrations(r.Context(), store, urlParam(r, "subjectId"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if regs == nil {
		regs = []user.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}
