// Package guard authorizes every request to a console route before any
// resource action executes.
//
// The decision is a pure function of (route, identity). Nothing is cached
// across requests: a revoked superadmin claim takes effect on the very next
// request rather than being sticky.
package guard

import (
	"github.com/harryviennot/stampeo-admin/internal/session"
)

// LoginPath is the single public console route.
const LoginPath = "/login"

// UnauthorizedQuery is the error annotation appended when a session is
// invalidated for insufficient privilege, so the login page can render an
// access-denied notice.
const UnauthorizedQuery = "error=unauthorized"

// Decision is the outcome of evaluating a request against the access policy.
type Decision int

const (
	// Allow admits the request; the identity is forwarded downstream.
	Allow Decision = iota
	// RedirectRoot sends an already privileged session away from the login page.
	RedirectRoot
	// RedirectLogin sends an unauthenticated caller to the login page, with no
	// error annotation.
	RedirectLogin
	// RedirectLoginUnauthorized invalidates the session and redirects to the
	// login page with the unauthorized annotation. Issued for authenticated
	// callers without the superadmin claim.
	RedirectLoginUnauthorized
)

// String returns a stable label for logging and metrics.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectRoot:
		return "redirect_root"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLoginUnauthorized:
		return "forced_logout"
	default:
		return "unknown"
	}
}

// Decide evaluates the access policy for a route and a resolved identity.
// A nil identity means unauthenticated. The policy is evaluated in fixed
// order; any ambiguity upstream (a resolver fault degrades to nil) lands on
// the restrictive branch, never on Allow.
func Decide(route string, identity *session.Identity) Decision {
	if route == LoginPath {
		if identity != nil && identity.IsSuperadmin {
			return RedirectRoot
		}
		return Allow
	}

	if identity == nil {
		return RedirectLogin
	}
	if !identity.IsSuperadmin {
		return RedirectLoginUnauthorized
	}
	return Allow
}
