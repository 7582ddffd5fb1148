package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fitstack/fitstack/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Tenants       *service.TenantService
	Organizations *service.OrganizationService
	RoleConfigs   *service.RoleConfigService
	Users         *service.UserService
	Auth          *service.AuthService

	// Readiness is checked by /health/ready; typically the directory store.
	Readiness interface {
		Ping(ctx context.Context) error
	}

	// Denials, when set, counts organization access denials.
	Denials DenialObserver
}

// DenialObserver receives a notification for every request rejected because
// the principal's organization scope does not cover the target.
type DenialObserver interface {
	AccessDenied(ctx context.Context)
}

// Health handles GET /health. It reports process liveness only.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. It verifies the tenant directory is
// reachable; tenant databases are checked lazily per request.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Readiness.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "directory unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
