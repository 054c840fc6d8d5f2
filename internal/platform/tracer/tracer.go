// Package tracer provides a lightweight tracing abstraction for backend API calls.
//
// It defines an internal tracer interface that doesn't depend directly on
// OpenTelemetry APIs, so the backend client can emit distributed traces while
// remaining decoupled from a specific tracing implementation.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to child operations.
	// The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the backend client.
const (
	SpanPoolStats         = "backend.pool_stats"
	SpanListCertificates  = "backend.certificates.list"
	SpanUploadCertificate = "backend.certificates.upload"
	SpanRevokeCertificate = "backend.certificates.revoke"
	SpanListBusinesses    = "backend.businesses.list"
	SpanActivateBusiness  = "backend.businesses.activate"
	SpanSuspendBusiness   = "backend.businesses.suspend"
)

// Attribute keys used by the backend client.
const (
	AttrBusinessID    = "business_id"
	AttrCertificateID = "certificate_id"
	AttrHTTPStatus    = "http.status_code"
)
