// Package clients contains HTTP adapters for the identity and fleet ports the
// rental core consumes. The core only sees the port interfaces; these adapters
// translate them into calls against the collaborator services.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"carrental/src/core/domain"
	"carrental/src/core/ports"
	"carrental/src/infra/config"
)

// IdentityClient calls the client-identity service over HTTP.
type IdentityClient struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewIdentityClient builds an identity adapter from config.
func NewIdentityClient(cfg config.ClientsConfig, log *slog.Logger) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(cfg.IdentityBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

var _ ports.IdentityService = (*IdentityClient)(nil)

type clientPayload struct {
	Active   bool   `json:"active"`
	Verified bool   `json:"verified"`
	Email    string `json:"email"`
}

func (c *IdentityClient) getClient(ctx context.Context, id domain.ClientID) (*clientPayload, error) {
	url := fmt.Sprintf("%s/v1/clients/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.NewNotFoundError("client")
	default:
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var payload clientPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return &payload, nil
}

func (c *IdentityClient) IsClientActive(ctx context.Context, id domain.ClientID) (bool, error) {
	payload, err := c.getClient(ctx, id)
	if err != nil {
		return false, err
	}
	return payload.Active, nil
}

func (c *IdentityClient) IsClientVerified(ctx context.Context, id domain.ClientID) (bool, error) {
	payload, err := c.getClient(ctx, id)
	if err != nil {
		return false, err
	}
	return payload.Verified, nil
}

func (c *IdentityClient) GetClientEmail(ctx context.Context, id domain.ClientID) (string, error) {
	payload, err := c.getClient(ctx, id)
	if err != nil {
		return "", err
	}
	return payload.Email, nil
}
