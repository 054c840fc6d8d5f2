package models

import (
	"encoding/json"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

type BusinessStatus string

const (
	BusinessStatusPending   BusinessStatus = "pending"
	BusinessStatusActive    BusinessStatus = "active"
	BusinessStatusSuspended BusinessStatus = "suspended"
)

// ParseBusinessStatus validates a status value at trust boundaries.
// Anything outside the known set is rejected rather than carried along.
func ParseBusinessStatus(s string) (BusinessStatus, error) {
	switch BusinessStatus(s) {
	case BusinessStatusPending, BusinessStatusActive, BusinessStatusSuspended:
		return BusinessStatus(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown business status: "+s)
	}
}

// UnmarshalJSON enforces the known status set when decoding backend responses.
func (s *BusinessStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBusinessStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SubscriptionTier is display metadata, not a state machine. Known tiers are
// named for convenience; unknown tiers pass through untouched so a new plan
// on the platform does not break the console.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"
)
