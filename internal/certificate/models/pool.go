package models

// PoolStats is a derived, read-only aggregate of the certificate pool.
// It is never stored independently; every read recomputes it from the
// certificate set so there is no counter state to keep consistent.
type PoolStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Assigned  int `json:"assigned"`
	Revoked   int `json:"revoked"`
}

// ComputePoolStats recomputes pool statistics as the multiset count of
// certificates by status. Total always equals the sum of the per-status counts.
func ComputePoolStats(certs []*Certificate) PoolStats {
	stats := PoolStats{Total: len(certs)}
	for _, c := range certs {
		switch c.Status {
		case CertificateStatusAvailable:
			stats.Available++
		case CertificateStatusAssigned:
			stats.Assigned++
		case CertificateStatusRevoked:
			stats.Revoked++
		}
	}
	return stats
}
