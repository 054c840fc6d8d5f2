// Package idp integrates the external identity provider.
//
// The provider is an opaque collaborator: the console hands it credentials
// and gets back an identity with the superadmin claim, nothing more. Session
// issuance and all authorization decisions stay on the console side.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// Verdict is the provider's answer for a verified credential.
type Verdict struct {
	Subject      string `json:"subject"`
	Email        string `json:"email"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

// Authenticator verifies operator credentials.
type Authenticator interface {
	// SignIn verifies an email/password pair. A rejected credential returns an
	// unauthorized domain error; transport faults return unavailable.
	SignIn(ctx context.Context, email, password string) (*Verdict, error)
}

// HTTPClient implements Authenticator against an HTTP identity provider.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Authenticator = (*HTTPClient)(nil)

// ClientOption configures the HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates an identity provider client.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn verifies the credential pair with the provider.
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Verdict, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}

	payload, err := json.Marshal(signInRequest{Email: email, Password: password})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal sign-in request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create sign-in request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "identity provider timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity provider unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	default:
		return nil, dErrors.New(dErrors.CodeUnavailable, "identity provider error")
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed identity provider response")
	}
	if verdict.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "identity provider returned no subject")
	}
	return &verdict, nil
}
