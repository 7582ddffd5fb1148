package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fitstack/fitstack/internal/middleware"
)

// Middlewares carries the request-scoped middleware the routes mount. The
// pieces are constructed in cmd/fitstack with their live dependencies.
type Middlewares struct {
	TenantContext func(http.Handler) http.Handler
	Principal     func(http.Handler) http.Handler
	RateLimit     func(http.Handler) http.Handler

	// DevTokens mounts the local token-minting endpoint. Never enable in
	// production.
	DevTokens bool
}

// MountRoutes registers all API routes on the given chi router.
//
// Two planes share the router. The control plane (/api/v1/admin) operates on
// the tenant directory itself and is reachable on any host; deployments keep
// it behind the internal network boundary. The tenant plane resolves the
// request host to a tenant first and every handler below it runs against
// that tenant's database.
func MountRoutes(r chi.Router, h *Handlers, mw Middlewares) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Get("/tenants", h.ListTenants)
		r.Post("/tenants", h.CreateTenant)
		r.Get("/tenants/{id}", h.GetTenant)
		r.Put("/tenants/{id}", h.UpdateTenant)
		r.Delete("/tenants/{id}", h.DeleteTenant)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.TenantContext)
		if mw.RateLimit != nil {
			r.Use(mw.RateLimit)
		}

		if mw.DevTokens {
			// Before Principal: the whole point is bootstrapping a token.
			r.Post("/auth/dev-token", h.MintDevToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(mw.Principal)

			// Organizations
			r.Get("/orgs", h.ListOrganizations)
			r.Get("/orgs/{id}", h.GetOrganization)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("owner", "manager"))
				r.Post("/orgs", h.CreateOrganization)
				r.Put("/orgs/{id}", h.UpdateOrganization)
				r.Put("/orgs/{id}/active", h.SetOrganizationActive)
				r.Delete("/orgs/{id}", h.DeleteOrganization)
			})

			// Role configs
			r.Get("/roles", h.ListRoleConfigs)
			r.Get("/roles/{slug}", h.GetRoleConfig)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("owner"))
				r.Post("/roles", h.CreateRoleConfig)
				r.Put("/roles/{slug}", h.UpdateRoleConfig)
				r.Delete("/roles/{slug}", h.DeleteRoleConfig)
			})

			// User surface registrations
			r.With(middleware.RequireRole("owner", "manager", "front-desk")).
				Post("/users", h.ProvisionUser)
			r.Get("/users/{subjectId}/registrations", h.ListUserRegistrations)
		})
	})
}
