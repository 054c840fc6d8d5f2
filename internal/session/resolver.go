package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

const issuer = "stampeo-admin"

// Resolver validates and rotates session tokens. Safe for concurrent use.
type Resolver struct {
	signingKey    []byte
	ttl           time.Duration
	refreshWindow time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithNow injects a clock, used by tests for deterministic expiry.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a session resolver. ttl bounds the lifetime of issued
// tokens; refreshWindow is how close to expiry a still-valid token gets
// transparently rotated.
func NewResolver(signingKey string, ttl, refreshWindow time.Duration, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		signingKey:    []byte(signingKey),
		ttl:           ttl,
		refreshWindow: refreshWindow,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Issue mints a session token for a verified caller and sets the session
// cookie. Called by the login handler after the identity provider has
// confirmed the credentials and the superadmin claim.
func (s *Resolver) Issue(w http.ResponseWriter, r *http.Request, subject, email string, superadmin bool) (string, error) {
	device := ParseUserAgent(r.UserAgent())
	token, err := s.mint(subject, email, superadmin, device)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	WriteCookie(w, r, token)

	s.logger.InfoContext(r.Context(), "session issued",
		"subject", subject,
		"superadmin", superadmin,
		"device", device,
	)
	return token, nil
}

// Resolve derives the caller's identity from the session cookie. It returns
// nil for any request without a valid credential: missing cookie, malformed
// token, bad signature, or expiry all degrade to unauthenticated rather than
// an error, so an internal fault can never look like a grant.
//
// When the token is valid but inside the refresh window, Resolve rotates it
// exactly once and propagates the new cookie on w. A rotation failure also
// degrades to unauthenticated. Rotation never spawns work beyond this request.
func (s *Resolver) Resolve(w http.ResponseWriter, r *http.Request) *Identity {
	raw, ok := ReadCookie(r)
	if !ok {
		return nil
	}

	claims, err := s.parse(raw)
	if err != nil {
		s.logger.WarnContext(r.Context(), "session token rejected", "error", err)
		return nil
	}

	identity := &Identity{
		Subject:      claims.Subject,
		Email:        claims.Email,
		IsSuperadmin: claims.Superadmin,
		RawToken:     raw,
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(s.now()) < s.refreshWindow {
		rotated, err := s.mint(claims.Subject, claims.Email, claims.Superadmin, claims.Device)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "session rotation failed", "error", err)
			return nil
		}
		WriteCookie(w, r, rotated)
		identity.RawToken = rotated
	}

	return identity
}

// Rotated reports whether Resolve refreshed the credential for this request,
// by comparing the identity's token with the inbound cookie.
func Rotated(r *http.Request, identity *Identity) bool {
	if identity == nil {
		return false
	}
	raw, ok := ReadCookie(r)
	return ok && raw != identity.RawToken
}

func (s *Resolver) mint(subject, email string, superadmin bool, device string) (string, error) {
	now := s.now()
	claims := &Claims{
		Email:      email,
		Superadmin: superadmin,
		Device:     device,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

func (s *Resolver) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(_ *jwt.Token) (interface{}, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
