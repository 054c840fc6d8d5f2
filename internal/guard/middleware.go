package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/harryviennot/stampeo-admin/internal/platform/metrics"
	"github.com/harryviennot/stampeo-admin/internal/platform/middleware"
	"github.com/harryviennot/stampeo-admin/internal/session"
)

type contextKeyIdentity struct{}

// IdentityFromContext retrieves the admitted identity from the context.
// Returns nil outside of guarded handlers.
func IdentityFromContext(ctx context.Context) *session.Identity {
	if identity, ok := ctx.Value(contextKeyIdentity{}).(*session.Identity); ok {
		return identity
	}
	return nil
}

// Middleware resolves the session and applies the access policy to every
// request before the handler runs. Session resolution, including the at most
// one transparent rotation, completes before the decision is finalized.
// Metrics may be nil in tests.
func Middleware(resolver *session.Resolver, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolver.Resolve(w, r)
			decision := Decide(r.URL.Path, identity)

			if m != nil {
				m.IncrementGuardDecision(decision.String())
				if session.Rotated(r, identity) {
					m.IncrementSessionsRotated()
				}
			}

			switch decision {
			case Allow:
				ctx := context.WithValue(r.Context(), contextKeyIdentity{}, identity)
				next.ServeHTTP(w, r.WithContext(ctx))

			case RedirectRoot:
				http.Redirect(w, r, "/", http.StatusSeeOther)

			case RedirectLogin:
				if m != nil {
					m.IncrementAuthFailures()
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)

			case RedirectLoginUnauthorized:
				// Valid credential, insufficient privilege: the session is
				// invalidated so the stale claim cannot be replayed.
				session.ClearCookie(w, r)
				if m != nil {
					m.IncrementForcedLogouts()
				}
				logger.WarnContext(r.Context(), "non-superadmin session rejected",
					"subject", identity.Subject,
					"path", r.URL.Path,
					"request_id", middleware.GetRequestID(r.Context()),
				)
				http.Redirect(w, r, LoginPath+"?"+UnauthorizedQuery, http.StatusSeeOther)

			default:
				// Unknown decisions resolve to the restrictive outcome.
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			}
		})
	}
}
