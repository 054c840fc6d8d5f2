// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing BusinessID where CertificateID is expected.
type (
	BusinessID    uuid.UUID
	CertificateID uuid.UUID
)

// New functions - for identifiers minted locally.

func NewBusinessID() BusinessID       { return BusinessID(uuid.New()) }
func NewCertificateID() CertificateID { return CertificateID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API responses).

func ParseBusinessID(s string) (BusinessID, error) {
	id, err := parseUUID(s, "business ID")
	return BusinessID(id), err
}

func ParseCertificateID(s string) (CertificateID, error) {
	id, err := parseUUID(s, "certificate ID")
	return CertificateID(id), err
}

// String methods - for logging and URL construction.

func (id BusinessID) String() string    { return uuid.UUID(id).String() }
func (id CertificateID) String() string { return uuid.UUID(id).String() }

// Text marshalling - the wire format is the canonical UUID string, both in
// backend responses and in console JSON payloads.

func (id BusinessID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id CertificateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *BusinessID) UnmarshalText(b []byte) error {
	parsed, err := ParseBusinessID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CertificateID) UnmarshalText(b []byte) error {
	parsed, err := ParseCertificateID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsNil checks - used for boundary validation.

func (id BusinessID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. Nil UUIDs are allowed here;
// use IsNil() where business validation requires a real identifier.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return parsed, nil
}
