package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	certmodels "github.com/harryviennot/stampeo-admin/internal/certificate/models"
	"github.com/harryviennot/stampeo-admin/internal/platform/tracer"
	"github.com/harryviennot/stampeo-admin/internal/session"
	id "github.com/harryviennot/stampeo-admin/pkg/domain"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	client  *Client
	ident   *session.Identity
}

func (s *ClientSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.client = New(s.server.URL, 5*time.Second, tracer.NewNoop())
	s.ident = &session.Identity{Subject: "op-1", IsSuperadmin: true, RawToken: "token-abc"}
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestBearerCredentialForwarded() {
	var gotAuth string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(certmodels.PoolStats{Total: 0})
	}

	_, err := s.client.PoolStats(context.Background(), s.ident)
	s.Require().NoError(err)
	s.Equal("Bearer token-abc", gotAuth)
}

func (s *ClientSuite) TestMissingCredentialRejectedLocally() {
	_, err := s.client.PoolStats(context.Background(), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.client.PoolStats(context.Background(), &session.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ClientSuite) TestPoolStatsSumInvariant() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(certmodels.PoolStats{Total: 5, Available: 1, Assigned: 1, Revoked: 1})
	}

	_, err := s.client.PoolStats(context.Background(), s.ident)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation), "mismatched totals must be rejected, got %v", err)
}

func (s *ClientSuite) TestListCertificatesRejectsUnknownStatus() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"` + uuid.New().String() + `","identifier":"pass.app.x","team_id":"T1","status":"frozen","created_at":"2026-01-01T00:00:00Z"}]`))
	}

	_, err := s.client.ListCertificates(context.Background(), s.ident)
	s.Require().Error(err, "an out-of-set status must not pass the boundary")
}

func (s *ClientSuite) TestListCertificates() {
	certID := uuid.New().String()
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/pass-type-ids/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"` + certID + `","identifier":"pass.app.stampeo.loyalty","team_id":"T1","status":"available","created_at":"2026-01-01T00:00:00Z"}]`))
	}

	certs, err := s.client.ListCertificates(context.Background(), s.ident)
	s.Require().NoError(err)
	s.Require().Len(certs, 1)
	s.Equal(certmodels.CertificateStatusAvailable, certs[0].Status)
	s.Equal(certID, certs[0].ID.String())
}

func (s *ClientSuite) TestRevokeAlreadyRevokedSurfacesConflict() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"conflict","error_description":"certificate is already revoked"}`))
	}

	_, err := s.client.RevokeCertificate(context.Background(), s.ident, id.CertificateID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "already revoked", "the current-state detail must be preserved for the operator")
}

func (s *ClientSuite) TestAuthRejectionSurfacesAsAuthenticationFailure() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}

	_, err := s.client.ListBusinesses(context.Background(), s.ident)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "401 must surface as an authentication failure, got %v", err)
}

func (s *ClientSuite) TestBackendDownSurfacesAsTransient() {
	s.server.Close()
	_, err := s.client.ListBusinesses(context.Background(), s.ident)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable), "expected unavailable, got %v", err)
}

func (s *ClientSuite) TestActivateBusiness() {
	businessID := uuid.New().String()
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/admin/businesses/"+businessID+"/activate", r.URL.Path)
		s.Equal(http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id":"` + businessID + `","name":"Corner Coffee","url_slug":"corner-coffee","subscription_tier":"free","status":"active","created_at":"2026-01-01T00:00:00Z","activated_at":"2026-02-01T00:00:00Z","updated_at":"2026-02-01T00:00:00Z"}`))
	}

	parsed, err := id.ParseBusinessID(businessID)
	s.Require().NoError(err)
	business, err := s.client.ActivateBusiness(context.Background(), s.ident, parsed)
	s.Require().NoError(err)
	s.True(business.IsActive())
	s.NotNil(business.ActivatedAt)
}

type recordingTracer struct {
	spans []recordedSpan
}

type recordedSpan struct {
	name  string
	attrs []tracer.Attribute
}

func (t *recordingTracer) Start(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	t.spans = append(t.spans, recordedSpan{name: name, attrs: attrs})
	return ctx, &recordedSpanHandle{}
}

type recordedSpanHandle struct{}

func (sp *recordedSpanHandle) End(_ error)                         {}
func (sp *recordedSpanHandle) SetAttributes(_ ...tracer.Attribute) {}

func (s *ClientSuite) TestSpansCarryResourceIDs() {
	rec := &recordingTracer{}
	client := New(s.server.URL, 5*time.Second, rec)

	businessID := uuid.New().String()
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"` + businessID + `","name":"Corner Coffee","url_slug":"corner-coffee","subscription_tier":"free","status":"active","created_at":"2026-01-01T00:00:00Z","activated_at":"2026-02-01T00:00:00Z","updated_at":"2026-02-01T00:00:00Z"}`))
	}
	parsedBusiness, err := id.ParseBusinessID(businessID)
	s.Require().NoError(err)
	_, err = client.ActivateBusiness(context.Background(), s.ident, parsedBusiness)
	s.Require().NoError(err)

	certID := uuid.New().String()
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"` + certID + `","identifier":"pass.app.stampeo.loyalty","status":"revoked"}`))
	}
	parsedCert, err := id.ParseCertificateID(certID)
	s.Require().NoError(err)
	_, err = client.RevokeCertificate(context.Background(), s.ident, parsedCert)
	s.Require().NoError(err)

	s.Require().Len(rec.spans, 2)
	s.Equal(tracer.SpanActivateBusiness, rec.spans[0].name)
	s.Contains(rec.spans[0].attrs, tracer.String(tracer.AttrBusinessID, businessID))
	s.Equal(tracer.SpanRevokeCertificate, rec.spans[1].name)
	s.Contains(rec.spans[1].attrs, tracer.String(tracer.AttrCertificateID, certID))
}

func (s *ClientSuite) TestUploadCertificateMultipart() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		s.Equal("pass.app.stampeo.loyalty", r.FormValue("identifier"))
		s.Equal("9XQ4T2ABCD", r.FormValue("team_id"))
		file, header, err := r.FormFile("p12_file")
		s.Require().NoError(err)
		defer func() { _ = file.Close() }()
		s.Equal("signing.p12", header.Filename)

		_ = json.NewEncoder(w).Encode(UploadResult{
			ID:         id.CertificateID(uuid.New()),
			Identifier: "pass.app.stampeo.loyalty",
			Status:     certmodels.CertificateStatusAvailable,
		})
	}

	result, err := s.client.UploadCertificate(context.Background(), s.ident, UploadRequest{
		Identifier:  "pass.app.stampeo.loyalty",
		TeamID:      "9XQ4T2ABCD",
		P12:         []byte{0x30, 0x82},
		P12Filename: "signing.p12",
	})
	s.Require().NoError(err)
	s.Equal(certmodels.CertificateStatusAvailable, result.Status)
}

func (s *ClientSuite) TestUploadValidation() {
	_, err := s.client.UploadCertificate(context.Background(), s.ident, UploadRequest{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.client.UploadCertificate(context.Background(), s.ident, UploadRequest{
		Identifier: "pass.app.x", TeamID: "T1",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), "missing p12 payload must be rejected")
}
