package models

import (
	"encoding/json"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

type CertificateStatus string

const (
	CertificateStatusAvailable CertificateStatus = "available"
	CertificateStatusAssigned  CertificateStatus = "assigned"
	CertificateStatusRevoked   CertificateStatus = "revoked"
)

// ParseCertificateStatus validates a status value at trust boundaries.
func ParseCertificateStatus(s string) (CertificateStatus, error) {
	switch CertificateStatus(s) {
	case CertificateStatusAvailable, CertificateStatusAssigned, CertificateStatusRevoked:
		return CertificateStatus(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown certificate status: "+s)
	}
}

// UnmarshalJSON enforces the known status set when decoding backend responses.
func (s *CertificateStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCertificateStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
