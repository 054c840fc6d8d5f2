package models

import (
	"fmt"
	"time"

	id "github.com/harryviennot/stampeo-admin/pkg/domain"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// Certificate is a Pass Type ID signing credential in the shared pool.
// Records are owned by the backend resource store; the console validates
// transition legality and renders pool state.
type Certificate struct {
	ID           id.CertificateID  `json:"id"`
	Identifier   string            `json:"identifier"`
	TeamID       string            `json:"team_id"`
	Status       CertificateStatus `json:"status"`
	BusinessID   *id.BusinessID    `json:"business_id,omitempty"`
	BusinessName string            `json:"business_name,omitempty"`
	AssignedAt   *time.Time        `json:"assigned_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Assign links the certificate to a business. Legal only from available.
// The console never initiates this transition itself; the backend does when a
// business claims a pool slot. The method exists so observed transitions can be
// validated with the same table.
func (c *Certificate) Assign(businessID id.BusinessID, now time.Time) error {
	if businessID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "business ID is required for assignment")
	}
	if c.Status != CertificateStatusAvailable {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("cannot assign certificate in status %q, want %q", c.Status, CertificateStatusAvailable))
	}
	c.Status = CertificateStatusAssigned
	c.BusinessID = &businessID
	c.AssignedAt = &now
	return nil
}

// Revoke transitions the certificate to revoked, a terminal state. Legal from
// available or assigned. BusinessID is retained for audit even though it is no
// longer authoritative for new pass issuance.
//
// Unlike business transitions, revoking an already revoked certificate is
// rejected rather than treated as a no-op: revocation is irreversible, and a
// repeat signals a consistency bug worth surfacing to the operator.
func (c *Certificate) Revoke() error {
	if c.Status == CertificateStatusRevoked {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("certificate %s is already revoked", c.Identifier))
	}
	c.Status = CertificateStatusRevoked
	return nil
}

// CanRevoke reports whether the revoke control should be offered for this
// certificate. Pages use it to hide the action for terminal records.
func (c *Certificate) CanRevoke() bool {
	return c.Status != CertificateStatusRevoked
}

// Validate checks the invariants a certificate record must hold when it
// crosses the console boundary: BusinessID is present iff status is assigned.
func (c *Certificate) Validate() error {
	if c.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "certificate ID is required")
	}
	if _, err := ParseCertificateStatus(string(c.Status)); err != nil {
		return err
	}
	assigned := c.Status == CertificateStatusAssigned
	hasBusiness := c.BusinessID != nil && !c.BusinessID.IsNil()
	if assigned && !hasBusiness {
		return dErrors.New(dErrors.CodeInvariantViolation, "assigned certificate is missing business link")
	}
	if !assigned && c.Status == CertificateStatusAvailable && hasBusiness {
		return dErrors.New(dErrors.CodeInvariantViolation, "available certificate must not carry a business link")
	}
	return nil
}
