package console

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	businessmodels "github.com/harryviennot/stampeo-admin/internal/business/models"
	certmodels "github.com/harryviennot/stampeo-admin/internal/certificate/models"
	"github.com/harryviennot/stampeo-admin/internal/guard"
	"github.com/harryviennot/stampeo-admin/internal/platform/middleware"
	"github.com/harryviennot/stampeo-admin/internal/session"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

// redirectRejectedCredential handles the backend refusing the operator's
// bearer token during a page load. The session cookie still validates locally
// but no longer authenticates against the platform, so the session is cleared
// and the operator goes back through login. Transient faults (unavailable,
// timeout) stay on the page as a degraded render; only a credential rejection
// takes this path.
func (h *Handler) redirectRejectedCredential(w http.ResponseWriter, r *http.Request, err error) bool {
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return false
	}
	session.ClearCookie(w, r)
	if h.metrics != nil {
		h.metrics.IncrementAuthFailures()
	}
	h.logger.WarnContext(r.Context(), "backend rejected session credential",
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
	return true
}

type dashboardData struct {
	Viewer       *session.Identity
	Stats        *certmodels.PoolStats
	Certificates []*certmodels.Certificate
	Businesses   []*businessmodels.Business
	LoadError    string
}

// HandleDashboard renders the landing page. The three backend reads share no
// state, so they run concurrently; one slow endpoint must not serialize the
// whole page.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ident := guard.IdentityFromContext(r.Context())
	data := dashboardData{Viewer: ident}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		stats, err := h.backend.PoolStats(ctx, ident)
		if err != nil {
			return err
		}
		data.Stats = stats
		return nil
	})
	g.Go(func() error {
		certs, err := h.backend.ListCertificates(ctx, ident)
		if err != nil {
			return err
		}
		data.Certificates = certs
		return nil
	})
	g.Go(func() error {
		businesses, err := h.backend.ListBusinesses(ctx, ident)
		if err != nil {
			return err
		}
		data.Businesses = businesses
		return nil
	})

	if err := g.Wait(); err != nil {
		if h.redirectRejectedCredential(w, r, err) {
			return
		}
		h.logger.WarnContext(r.Context(), "dashboard load degraded",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		data.LoadError = "Some backend data could not be loaded. Retry shortly."
	}

	h.renderPage(w, r, "dashboard.tmpl", data)
}

type businessesPageData struct {
	Viewer     *session.Identity
	Businesses []*businessmodels.Business
	LoadError  string
}

// HandleBusinessesPage renders the business lifecycle table.
func (h *Handler) HandleBusinessesPage(w http.ResponseWriter, r *http.Request) {
	ident := guard.IdentityFromContext(r.Context())
	data := businessesPageData{Viewer: ident}

	businesses, err := h.backend.ListBusinesses(r.Context(), ident)
	if err != nil {
		if h.redirectRejectedCredential(w, r, err) {
			return
		}
		h.logger.WarnContext(r.Context(), "business list load failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		data.LoadError = "Business list could not be loaded. Retry shortly."
	}
	data.Businesses = businesses

	h.renderPage(w, r, "businesses.tmpl", data)
}

type certificatesPageData struct {
	Viewer       *session.Identity
	Stats        *certmodels.PoolStats
	Certificates []*certmodels.Certificate
	LoadError    string
}

// HandleCertificatesPage renders the certificate pool table with the pool
// aggregate alongside it.
func (h *Handler) HandleCertificatesPage(w http.ResponseWriter, r *http.Request) {
	ident := guard.IdentityFromContext(r.Context())
	data := certificatesPageData{Viewer: ident}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		stats, err := h.backend.PoolStats(ctx, ident)
		if err != nil {
			return err
		}
		data.Stats = stats
		return nil
	})
	g.Go(func() error {
		certs, err := h.backend.ListCertificates(ctx, ident)
		if err != nil {
			return err
		}
		data.Certificates = certs
		return nil
	})

	if err := g.Wait(); err != nil {
		if h.redirectRejectedCredential(w, r, err) {
			return
		}
		h.logger.WarnContext(r.Context(), "certificate pool load degraded",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		data.LoadError = "Certificate pool could not be loaded. Retry shortly."
	}

	h.renderPage(w, r, "certificates.tmpl", data)
}
