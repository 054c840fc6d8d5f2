package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	id "github.com/harryviennot/stampeo-admin/pkg/domain"
)

func pendingBusiness() *Business {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &Business{
		ID:               id.BusinessID(uuid.New()),
		Name:             "Corner Coffee",
		URLSlug:          "corner-coffee",
		SubscriptionTier: TierFree,
		Status:           BusinessStatusPending,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestActivateSetsActivatedAtOnce(t *testing.T) {
	b := pendingBusiness()
	t1 := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	if err := b.Activate(t1); err != nil {
		t.Fatalf("unexpected error activating pending business: %v", err)
	}
	if b.Status != BusinessStatusActive {
		t.Fatalf("expected active, got %s", b.Status)
	}
	if b.ActivatedAt == nil || !b.ActivatedAt.Equal(t1) {
		t.Fatalf("expected ActivatedAt = %v, got %v", t1, b.ActivatedAt)
	}
	if !b.UpdatedAt.Equal(t1) {
		t.Fatalf("expected UpdatedAt refreshed to %v, got %v", t1, b.UpdatedAt)
	}

	// suspend then re-activate: ActivatedAt must survive both transitions
	t2 := t1.Add(24 * time.Hour)
	if err := b.Suspend(t2); err != nil {
		t.Fatalf("unexpected error suspending active business: %v", err)
	}
	if b.ActivatedAt == nil || !b.ActivatedAt.Equal(t1) {
		t.Fatalf("suspension must not clear ActivatedAt, got %v", b.ActivatedAt)
	}

	t3 := t2.Add(24 * time.Hour)
	if err := b.Activate(t3); err != nil {
		t.Fatalf("unexpected error re-activating suspended business: %v", err)
	}
	if !b.ActivatedAt.Equal(t1) {
		t.Fatalf("re-activation must preserve original ActivatedAt %v, got %v", t1, b.ActivatedAt)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	b := pendingBusiness()
	t1 := time.Now().UTC()
	if err := b.Activate(t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The UI cannot guarantee exactly-once delivery, so a repeat activate is
	// accepted without error and without effect.
	t2 := t1.Add(time.Hour)
	if err := b.Activate(t2); err != nil {
		t.Fatalf("repeat activate should be accepted: %v", err)
	}
	if !b.UpdatedAt.Equal(t1) {
		t.Fatalf("repeat activate should not refresh UpdatedAt, got %v", b.UpdatedAt)
	}
}

func TestSuspendIsIdempotent(t *testing.T) {
	b := pendingBusiness()
	t1 := time.Now().UTC()
	if err := b.Suspend(t1); err != nil {
		t.Fatalf("suspending a pending business should be legal: %v", err)
	}
	if b.ActivatedAt != nil {
		t.Fatalf("never-activated business should have no ActivatedAt")
	}
	if err := b.Suspend(t1.Add(time.Minute)); err != nil {
		t.Fatalf("repeat suspend should be accepted: %v", err)
	}
	if !b.UpdatedAt.Equal(t1) {
		t.Fatalf("repeat suspend should not refresh UpdatedAt")
	}
}

func TestBusinessStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s BusinessStatus
	if err := json.Unmarshal([]byte(`"deleted"`), &s); err == nil {
		t.Fatalf("expected error for unknown status value")
	}
	if err := json.Unmarshal([]byte(`"suspended"`), &s); err != nil {
		t.Fatalf("unexpected error for known status: %v", err)
	}
	if s != BusinessStatusSuspended {
		t.Fatalf("expected suspended, got %s", s)
	}
}

func TestValidate(t *testing.T) {
	b := pendingBusiness()
	if err := b.Validate(); err != nil {
		t.Fatalf("pending business should validate: %v", err)
	}

	b.Status = BusinessStatusActive
	if err := b.Validate(); err == nil {
		t.Fatalf("active business without ActivatedAt should fail validation")
	}

	now := time.Now()
	b.ActivatedAt = &now
	if err := b.Validate(); err != nil {
		t.Fatalf("active business with ActivatedAt should validate: %v", err)
	}
}
