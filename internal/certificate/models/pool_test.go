package models

import (
	"testing"
	"time"

	"github.com/google/uuid"

	id "github.com/harryviennot/stampeo-admin/pkg/domain"
)

func certWithStatus(status CertificateStatus) *Certificate {
	c := &Certificate{
		ID:         id.CertificateID(uuid.New()),
		Identifier: "pass.app.stampeo.card",
		TeamID:     "9XQ4T2ABCD",
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if status == CertificateStatusAssigned {
		businessID := id.BusinessID(uuid.New())
		now := time.Now().UTC()
		c.BusinessID = &businessID
		c.AssignedAt = &now
	}
	return c
}

func TestComputePoolStats(t *testing.T) {
	certs := []*Certificate{
		certWithStatus(CertificateStatusAvailable),
		certWithStatus(CertificateStatusAvailable),
		certWithStatus(CertificateStatusAssigned),
		certWithStatus(CertificateStatusRevoked),
		certWithStatus(CertificateStatusRevoked),
		certWithStatus(CertificateStatusRevoked),
	}

	stats := ComputePoolStats(certs)

	if stats.Available != 2 || stats.Assigned != 1 || stats.Revoked != 3 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Total != stats.Available+stats.Assigned+stats.Revoked {
		t.Fatalf("total %d must equal sum of per-status counts", stats.Total)
	}
}

func TestComputePoolStatsEmpty(t *testing.T) {
	stats := ComputePoolStats(nil)
	if stats.Total != 0 || stats.Available != 0 || stats.Assigned != 0 || stats.Revoked != 0 {
		t.Fatalf("empty pool should be all zeros: %+v", stats)
	}
}

func TestPoolStatsTrackTransitions(t *testing.T) {
	certs := []*Certificate{
		certWithStatus(CertificateStatusAvailable),
		certWithStatus(CertificateStatusAvailable),
	}

	before := ComputePoolStats(certs)
	if before.Available != 2 {
		t.Fatalf("expected 2 available, got %d", before.Available)
	}

	if err := certs[0].Revoke(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := ComputePoolStats(certs)
	if after.Available != 1 || after.Revoked != 1 {
		t.Fatalf("stats must follow the certificate set: %+v", after)
	}
	if after.Total != 2 {
		t.Fatalf("revocation does not remove certificates from the pool")
	}
}
