package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

func TestWriteErrorDomainCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "certificate not found"), http.StatusNotFound, "not_found"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "missing credential"), http.StatusUnauthorized, "unauthorized"},
		{"transition rejected", dErrors.New(dErrors.CodeInvariantViolation, "certificate is already revoked"), http.StatusConflict, "conflict"},
		{"backend down", dErrors.New(dErrors.CodeUnavailable, "backend unreachable"), http.StatusBadGateway, "backend_unavailable"},
		{"timeout", dErrors.New(dErrors.CodeTimeout, "backend timed out"), http.StatusGatewayTimeout, "backend_timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != tc.wantCode {
				t.Fatalf("expected error code %q, got %q", tc.wantCode, body["error"])
			}
		})
	}
}

func TestWriteErrorFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.ErrHandlerTimeout)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("non-domain errors should map to 500, got %d", rec.Code)
	}
}

func TestWriteErrorIncludesDescription(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeInvariantViolation, "certificate is already revoked"))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error_description"] != "certificate is already revoked" {
		t.Fatalf("expected current-state detail in description, got %q", body["error_description"])
	}
}
