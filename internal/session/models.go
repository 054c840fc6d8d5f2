// Package session resolves the caller's session credential into an identity.
//
// Sessions are self-contained signed tokens carried in an HttpOnly cookie.
// The resolver produces exactly one of: an authenticated identity with the
// superadmin claim, or unauthenticated. Nothing is persisted server-side;
// an identity lives for the duration of a single request.
package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mssola/useragent"
)

// Identity is the per-request view of the caller. RawToken is the bearer
// credential forwarded to the backend API; it reflects the rotated token when
// the resolver refreshed the session during this request.
type Identity struct {
	Subject      string
	Email        string
	IsSuperadmin bool
	RawToken     string
}

// Claims are the signed session token claims.
type Claims struct {
	Email      string `json:"email,omitempty"`
	Superadmin bool   `json:"superadmin"`
	Device     string `json:"device,omitempty"`
	jwt.RegisteredClaims
}

// ParseUserAgent extracts a human-readable device display name from a
// User-Agent string, e.g. "Chrome on macOS". Recorded at login for session
// audit logging.
func ParseUserAgent(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
