// Package backend is the HTTP client for the pass platform's resource API.
//
// The console holds no persistent copy of Business or Certificate records;
// every call here fetches or transitions state owned by the backend. Each
// request carries the caller's bearer credential, runs under the caller's
// context deadline, and maps backend rejections onto domain error codes so
// handlers and the access guard can tell an authentication failure from a
// rejected transition or a transient fault.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	businessmodels "github.com/harryviennot/stampeo-admin/internal/business/models"
	certmodels "github.com/harryviennot/stampeo-admin/internal/certificate/models"
	"github.com/harryviennot/stampeo-admin/internal/platform/metrics"
	"github.com/harryviennot/stampeo-admin/internal/platform/tracer"
	"github.com/harryviennot/stampeo-admin/internal/session"
	id "github.com/harryviennot/stampeo-admin/pkg/domain"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// Client calls the backend resource API. Safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tracer     tracer.Tracer
	metrics    *metrics.Metrics
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMetrics records backend call latency. Nil metrics are allowed.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a backend API client. The timeout bounds each call on top of
// the caller's ambient context deadline so no operation can hang.
func New(baseURL string, timeout time.Duration, tr tracer.Tracer, opts ...Option) *Client {
	if tr == nil {
		tr = tracer.NewNoop()
	}
	c := &Client{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: tr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PoolStats fetches the derived certificate pool aggregate.
func (c *Client) PoolStats(ctx context.Context, ident *session.Identity) (*certmodels.PoolStats, error) {
	var stats certmodels.PoolStats
	if err := c.call(ctx, ident, tracer.SpanPoolStats, http.MethodGet, "/pass-type-ids/pool", nil, &stats); err != nil {
		return nil, err
	}
	if stats.Total != stats.Available+stats.Assigned+stats.Revoked {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool stats do not sum to total")
	}
	return &stats, nil
}

// ListCertificates fetches the certificate pool.
func (c *Client) ListCertificates(ctx context.Context, ident *session.Identity) ([]*certmodels.Certificate, error) {
	var certs []*certmodels.Certificate
	if err := c.call(ctx, ident, tracer.SpanListCertificates, http.MethodGet, "/pass-type-ids/", nil, &certs); err != nil {
		return nil, err
	}
	for _, cert := range certs {
		if err := cert.Validate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "backend returned an invalid certificate record")
		}
	}
	return certs, nil
}

// UploadRequest carries a new signing certificate for the pool.
type UploadRequest struct {
	Identifier  string
	TeamID      string
	P12         []byte
	P12Filename string
	P12Password string
}

// UploadResult is the backend's acknowledgement of an accepted upload.
type UploadResult struct {
	ID         id.CertificateID             `json:"id"`
	Identifier string                       `json:"identifier"`
	Status     certmodels.CertificateStatus `json:"status"`
}

// UploadCertificate submits a signing certificate to the pool. The backend
// rejects uploads whose identifier/team pair or p12 payload does not parse as
// a valid signing certificate; that surfaces as a validation error here.
func (c *Client) UploadCertificate(ctx context.Context, ident *session.Identity, req UploadRequest) (*UploadResult, error) {
	if req.Identifier == "" || req.TeamID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identifier and team ID are required")
	}
	if len(req.P12) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "certificate file is required")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("identifier", req.Identifier); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
	}
	if err := form.WriteField("team_id", req.TeamID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
	}
	if req.P12Password != "" {
		if err := form.WriteField("p12_password", req.P12Password); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
		}
	}
	filename := req.P12Filename
	if filename == "" {
		filename = "certificate.p12"
	}
	part, err := form.CreateFormFile("p12_file", filename)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
	}
	if _, err := part.Write(req.P12); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
	}
	if err := form.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload form")
	}

	var result UploadResult
	err = c.callRaw(ctx, ident, tracer.SpanUploadCertificate, http.MethodPost, "/pass-type-ids/upload",
		body, form.FormDataContentType(), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RevokeCertificate revokes a certificate. Revocation is terminal; the
// backend rejects a revoke on an already revoked certificate and that
// rejection is surfaced, not swallowed, since it signals a consistency bug.
func (c *Client) RevokeCertificate(ctx context.Context, ident *session.Identity, certID id.CertificateID) (*UploadResult, error) {
	if certID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "certificate ID is required")
	}
	var result UploadResult
	path := fmt.Sprintf("/pass-type-ids/%s/revoke", certID)
	if err := c.call(ctx, ident, tracer.SpanRevokeCertificate, http.MethodPost, path, nil, &result,
		tracer.String(tracer.AttrCertificateID, certID.String())); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListBusinesses fetches the tenant roster.
func (c *Client) ListBusinesses(ctx context.Context, ident *session.Identity) ([]*businessmodels.Business, error) {
	var businesses []*businessmodels.Business
	if err := c.call(ctx, ident, tracer.SpanListBusinesses, http.MethodGet, "/admin/businesses", nil, &businesses); err != nil {
		return nil, err
	}
	for _, b := range businesses {
		if err := b.Validate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "backend returned an invalid business record")
		}
	}
	return businesses, nil
}

// ActivateBusiness transitions a business to active.
func (c *Client) ActivateBusiness(ctx context.Context, ident *session.Identity, businessID id.BusinessID) (*businessmodels.Business, error) {
	return c.transitionBusiness(ctx, ident, tracer.SpanActivateBusiness, businessID, "activate")
}

// SuspendBusiness transitions a business to suspended.
func (c *Client) SuspendBusiness(ctx context.Context, ident *session.Identity, businessID id.BusinessID) (*businessmodels.Business, error) {
	return c.transitionBusiness(ctx, ident, tracer.SpanSuspendBusiness, businessID, "suspend")
}

func (c *Client) transitionBusiness(ctx context.Context, ident *session.Identity, span string, businessID id.BusinessID, action string) (*businessmodels.Business, error) {
	if businessID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "business ID is required")
	}
	var business businessmodels.Business
	path := fmt.Sprintf("/admin/businesses/%s/%s", businessID, action)
	if err := c.call(ctx, ident, span, http.MethodPost, path, nil, &business,
		tracer.String(tracer.AttrBusinessID, businessID.String())); err != nil {
		return nil, err
	}
	if err := business.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "backend returned an invalid business record")
	}
	return &business, nil
}

// Ping reports backend reachability for the readiness probe. It carries no
// credential; any HTTP response at all means the backend is up.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) call(ctx context.Context, ident *session.Identity, span, method, path string, body io.Reader, out any, attrs ...tracer.Attribute) error {
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.callRaw(ctx, ident, span, method, path, body, contentType, out, attrs...)
}

func (c *Client) callRaw(ctx context.Context, ident *session.Identity, span, method, path string, body io.Reader, contentType string, out any, attrs ...tracer.Attribute) error {
	if ident == nil || ident.RawToken == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing bearer credential")
	}

	ctx, sp := c.tracer.Start(ctx, span, append(attrs, tracer.String("http.method", method))...)
	var callErr error
	defer func() { sp.End(callErr) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveBackendLatency(span, time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		callErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to create backend request")
		return callErr
	}
	req.Header.Set("Authorization", "Bearer "+ident.RawToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			callErr = dErrors.Wrap(err, dErrors.CodeTimeout, "backend request timed out")
			return callErr
		}
		callErr = dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unreachable")
		return callErr
	}
	defer func() { _ = resp.Body.Close() }()

	sp.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		callErr = c.mapError(resp)
		return callErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			callErr = dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed backend response")
			return callErr
		}
	}
	return nil
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Detail      string `json:"detail"`
}

// mapError translates a backend rejection into a domain error. An auth
// rejection must surface as an authentication failure to the guard's caller,
// never as a generic fault.
func (c *Client) mapError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	detail := ""
	var envelope errorResponse
	if err := json.Unmarshal(payload, &envelope); err == nil {
		switch {
		case envelope.Description != "":
			detail = envelope.Description
		case envelope.Detail != "":
			detail = envelope.Detail
		case envelope.Error != "":
			detail = envelope.Error
		}
	}

	code := dErrors.CodeInternal
	fallback := ""
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code, fallback = dErrors.CodeUnauthorized, "backend rejected the credential"
	case http.StatusForbidden:
		code, fallback = dErrors.CodeForbidden, "backend denied access"
	case http.StatusNotFound:
		code, fallback = dErrors.CodeNotFound, "resource not found"
	case http.StatusConflict:
		code, fallback = dErrors.CodeConflict, "transition rejected"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code, fallback = dErrors.CodeValidation, "backend rejected the request"
	case http.StatusGatewayTimeout:
		code, fallback = dErrors.CodeTimeout, "backend timed out"
	default:
		if resp.StatusCode >= http.StatusInternalServerError {
			code, fallback = dErrors.CodeUnavailable, "backend error"
		} else {
			fallback = fmt.Sprintf("unexpected backend status %d", resp.StatusCode)
		}
	}

	if detail == "" {
		detail = fallback
	}
	return dErrors.New(code, detail)
}
