package models

import (
	"time"

	id "github.com/harryviennot/stampeo-admin/pkg/domain"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// Business is a tenant account on the platform, progressing through an
// approval lifecycle. Records are owned by the backend resource store; the
// console holds no persistent copy and only validates which transitions
// are legal.
type Business struct {
	ID               id.BusinessID    `json:"id"`
	Name             string           `json:"name"`
	URLSlug          string           `json:"url_slug"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
	Status           BusinessStatus   `json:"status"`
	OwnerName        string           `json:"owner_name,omitempty"`
	OwnerEmail       string           `json:"owner_email,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ActivatedAt      *time.Time       `json:"activated_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (b *Business) IsActive() bool {
	return b.Status == BusinessStatusActive
}

// Activate transitions the business to active status. Legal from pending or
// suspended; re-activating an already active business is accepted as a no-op
// since the UI cannot guarantee exactly-once delivery. ActivatedAt is set only
// on the first transition into active and never cleared afterwards.
func (b *Business) Activate(now time.Time) error {
	if b.Status == BusinessStatusActive {
		return nil
	}
	b.Status = BusinessStatusActive
	if b.ActivatedAt == nil {
		b.ActivatedAt = &now
	}
	b.UpdatedAt = now
	return nil
}

// Suspend transitions the business to suspended status. Legal from pending or
// active; re-suspending is accepted as a no-op. Suspension preserves
// ActivatedAt and does not touch certificate assignments.
func (b *Business) Suspend(now time.Time) error {
	if b.Status == BusinessStatusSuspended {
		return nil
	}
	b.Status = BusinessStatusSuspended
	b.UpdatedAt = now
	return nil
}

// Validate checks the invariants a business record must hold when it crosses
// the console boundary: ActivatedAt is present iff the business has ever
// reached active.
func (b *Business) Validate() error {
	if b.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "business ID is required")
	}
	if _, err := ParseBusinessStatus(string(b.Status)); err != nil {
		return err
	}
	if b.Status == BusinessStatusActive && b.ActivatedAt == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "active business is missing activation timestamp")
	}
	return nil
}
