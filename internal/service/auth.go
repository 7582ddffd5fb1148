package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain/principal"
)

const (
	tokenIssuer   = "fitstack-idp"
	tokenAudience = "fitstack"
)

// TokenClaims is the payload of an HMAC-signed access token issued by the
// identity provider. OrganizationIDs empty means access to all organizations.
type TokenClaims struct {
	SubjectID       string   `json:"sub"`
	Email           string   `json:"email"`
	TenantSlug      string   `json:"tenant"`
	Roles           []string `json:"roles"`
	OrganizationIDs []string `json:"org_ids,omitempty"`
	IssuedAt        int64    `json:"iat"`
	Expiry          int64    `json:"exp"`
	Audience        string   `json:"aud"`
	Issuer          string   `json:"iss"`
	JTI             string   `json:"jti"`
}

// AuthService verifies access tokens and builds principals from them.
type AuthService struct {
	cfg    config.Auth
	secret []byte
}

// NewAuthService creates a new token verification service.
func NewAuthService(cfg config.Auth) *AuthService {
	return &AuthService{cfg: cfg, secret: []byte(cfg.Secret)}
}

// VerifyAccessToken checks the token signature, expiry, and audience, and
// confirms the token was issued for tenantSlug. Cross-tenant token replay is
// rejected here regardless of what the token otherwise grants.
func (s *AuthService) VerifyAccessToken(tokenStr, tenantSlug string) (*principal.Principal, error) {
	claims, err := s.verifyJWT(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TenantSlug != tenantSlug {
		return nil, errors.New("token issued for another tenant")
	}
	// Org ids reach SQL as a uuid[] cast; reject malformed ones here so a
	// bad token fails authentication instead of breaking every list query.
	for _, id := range claims.OrganizationIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("malformed organization id %q in token", id)
		}
	}
	p := principal.New(claims.SubjectID, claims.Email, claims.Roles, claims.OrganizationIDs)
	return &p, nil
}

// SignAccessToken mints a token for the given claims, filling the standard
// fields. Used by the dev token endpoint and by tests; production tokens come
// from the identity provider sharing the same secret.
func (s *AuthService) SignAccessToken(claims TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.Expiry = now.Add(ttl).Unix()
	claims.Audience = tokenAudience
	claims.Issuer = tokenIssuer
	claims.JTI = uuid.NewString()

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := jwtHeader + "." + base64URLEncode(payload)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

// --- JWT implementation (HS256 with stdlib) ---

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *AuthService) verifyJWT(tokenStr string) (*TokenClaims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, errors.New("malformed token")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, errors.New("invalid signature")
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}

	if time.Now().Unix() > claims.Expiry {
		return nil, errors.New("token expired")
	}
	if claims.Audience != tokenAudience {
		return nil, errors.New("invalid token audience")
	}
	if claims.Issuer != tokenIssuer {
		return nil, errors.New("invalid token issuer")
	}

	return &claims, nil
}

// --- Helpers ---

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	// Add padding back
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
