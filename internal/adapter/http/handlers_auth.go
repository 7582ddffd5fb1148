package http

import (
	"net/http"
	"time"

	"github.com/fitstack/fitstack/internal/middleware"
	"github.com/fitstack/fitstack/internal/service"
)

type devTokenRequest struct {
	SubjectID       string   `json:"subject_id"`
	Email           string   `json:"email"`
	Roles           []string `json:"roles"`
	OrganizationIDs []string `json:"org_ids,omitempty"`
	TTLSeconds      int      `json:"ttl_seconds,omitempty"`
}

type devTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MintDevToken handles POST /api/v1/auth/dev-token. It signs an access token
// for the resolved tenant so local clients can exercise the tenant plane
// without a running identity provider. Only mounted in development.
func (h *Handlers) MintDevToken(w http.ResponseWriter, r *http.Request) {
	t := middleware.TenantFromContext(r.Context())
	if t == nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	req, ok := readJSON[devTokenRequest](w, r)
	if !ok {
		return
	}
	if req.SubjectID == "" || len(req.Roles) == 0 {
		writeError(w, http.StatusBadRequest, "subject_id and roles are required")
		return
	}

	ttl := time.Hour
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	token, err := h.Auth.SignAccessToken(service.TokenClaims{
		SubjectID:       req.SubjectID,
		Email:           req.Email,
		TenantSlug:      t.Slug,
		Roles:           req.Roles,
		OrganizationIDs: req.OrganizationIDs,
	}, ttl)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, devTokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	})
}
