// Package idp provides an HTTP client for the identity provider's admin API.
// The core only creates and removes IdP resources during provisioning; login
// and token issuance stay inside the provider.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/domain/role"
	"github.com/fitstack/fitstack/internal/port/idp"
	"github.com/fitstack/fitstack/internal/resilience"
)

// Client talks to the identity provider's admin API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates an identity-provider admin client from config.
func NewClient(cfg config.IdP) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type provisionTenantRequest struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Surfaces []string `json:"surfaces"`
}

type provisionTenantResponse struct {
	TenantID  string            `json:"tenant_id"`
	ClientIDs map[string]string `json:"client_ids"`
}

// ProvisionTenant creates the IdP tenant and one application per supported
// surface.
func (c *Client) ProvisionTenant(ctx context.Context, slug, name string) (*idp.TenantResources, error) {
	surfaces := make([]string, 0, len(role.ValidSurfaces))
	for s := range role.ValidSurfaces {
		surfaces = append(surfaces, string(s))
	}

	body, err := json.Marshal(provisionTenantRequest{Slug: slug, Name: name, Surfaces: surfaces})
	if err != nil {
		return nil, fmt.Errorf("marshal provision tenant: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/admin/tenants", body)
	if err != nil {
		return nil, fmt.Errorf("provision tenant: %w", err)
	}

	var out provisionTenantResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("unmarshal provision tenant: %w", err)
	}
	return &idp.TenantResources{
		AuthTenantID: out.TenantID,
		ClientIDs:    out.ClientIDs,
	}, nil
}

// DeprovisionTenant removes the IdP tenant and its applications.
func (c *Client) DeprovisionTenant(ctx context.Context, authTenantID string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, "/admin/tenants/"+authTenantID, nil); err != nil {
		return fmt.Errorf("deprovision tenant: %w", err)
	}
	return nil
}

type registerUserRequest struct {
	SubjectID string              `json:"subject_id"`
	Email     string              `json:"email"`
	Access    map[string][]string `json:"access"` // surface -> valid roles
}

// RegisterUser attaches a subject to the tenant's surface applications with
// the per-surface role lists.
func (c *Client) RegisterUser(ctx context.Context, authTenantID, subjectID, email string, access role.Access) error {
	byName := make(map[string][]string, len(access))
	for surface, roles := range access {
		byName[string(surface)] = roles
	}

	body, err := json.Marshal(registerUserRequest{
		SubjectID: subjectID,
		Email:     email,
		Access:    byName,
	})
	if err != nil {
		return fmt.Errorf("marshal register user: %w", err)
	}

	if _, err := c.doRequest(ctx, http.MethodPost, "/admin/tenants/"+authTenantID+"/users", body); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("idp API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
