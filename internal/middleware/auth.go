package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitstack/fitstack/internal/domain/principal"
)

type principalCtxKey struct{}

// Authenticator verifies an access token against the tenant it was issued
// for.
type Authenticator interface {
	VerifyAccessToken(tokenStr, tenantSlug string) (*principal.Principal, error)
}

// Principal authenticates the request's bearer token and attaches the
// resulting principal to the context. It must run below TenantContext: the
// token is checked against the tenant the request resolved to, so a token
// minted for one tenant is useless on another's subdomain.
//
// When auth is disabled (local development), every request gets an all-access
// principal instead of a 401.
func Principal(auth Authenticator, enabled bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				p := principal.New("dev", "dev@localhost", []string{"owner"}, nil)
				ctx := context.WithValue(r.Context(), principalCtxKey{}, &p)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			t := TenantFromContext(r.Context())
			if t == nil {
				log.Error("principal middleware mounted outside tenant plane", "path", r.URL.Path)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			p, err := auth.VerifyAccessToken(token, t.Slug)
			if err != nil {
				log.Warn("token rejected", "error", err)
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose principal carries none of the given
// role slugs. Mount below Principal.
func RequireRole(slugs ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			for _, slug := range slugs {
				if p.HasRole(slug) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"error":"insufficient role"}`, http.StatusForbidden)
		})
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request never passed the Principal middleware.
func PrincipalFromContext(ctx context.Context) *principal.Principal {
	p, _ := ctx.Value(principalCtxKey{}).(*principal.Principal)
	return p
}

// PrincipalCtxKeyForTest returns the context key used for storing the
// principal. Exported only for tests that need to inject one.
func PrincipalCtxKeyForTest() any {
	return principalCtxKey{}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
