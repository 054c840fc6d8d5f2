// Package console is the thin HTTP layer of the admin surface. It delegates
// to the backend client and the lifecycle models; authorization has already
// happened in the access guard by the time a handler runs.
package console

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harryviennot/stampeo-admin/internal/backend"
	businessmodels "github.com/harryviennot/stampeo-admin/internal/business/models"
	certmodels "github.com/harryviennot/stampeo-admin/internal/certificate/models"
	"github.com/harryviennot/stampeo-admin/internal/guard"
	"github.com/harryviennot/stampeo-admin/internal/idp"
	"github.com/harryviennot/stampeo-admin/internal/platform/httputil"
	"github.com/harryviennot/stampeo-admin/internal/platform/metrics"
	"github.com/harryviennot/stampeo-admin/internal/platform/middleware"
	"github.com/harryviennot/stampeo-admin/internal/session"
	id "github.com/harryviennot/stampeo-admin/pkg/domain"
	dErrors "github.com/harryviennot/stampeo-admin/pkg/domain-errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// BackendClient is the slice of the backend API the console consumes.
type BackendClient interface {
	PoolStats(ctx context.Context, ident *session.Identity) (*certmodels.PoolStats, error)
	ListCertificates(ctx context.Context, ident *session.Identity) ([]*certmodels.Certificate, error)
	UploadCertificate(ctx context.Context, ident *session.Identity, req backend.UploadRequest) (*backend.UploadResult, error)
	RevokeCertificate(ctx context.Context, ident *session.Identity, certID id.CertificateID) (*backend.UploadResult, error)
	ListBusinesses(ctx context.Context, ident *session.Identity) ([]*businessmodels.Business, error)
	ActivateBusiness(ctx context.Context, ident *session.Identity, businessID id.BusinessID) (*businessmodels.Business, error)
	SuspendBusiness(ctx context.Context, ident *session.Identity, businessID id.BusinessID) (*businessmodels.Business, error)
}

// Handler serves the console pages and action endpoints.
type Handler struct {
	backend   BackendClient
	auth      idp.Authenticator
	sessions  *session.Resolver
	metrics   *metrics.Metrics
	logger    *slog.Logger
	templates *template.Template
}

// New creates a console handler. Metrics may be nil in tests.
func New(backendClient BackendClient, auth idp.Authenticator, sessions *session.Resolver, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		backend:   backendClient,
		auth:      auth,
		sessions:  sessions,
		metrics:   m,
		logger:    logger,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
	}
}

// Register mounts the console routes. All of them sit behind the access
// guard; the guard itself keeps /login public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/login", h.HandleLoginPage)
	r.Post("/login", h.HandleLoginSubmit)
	r.Post("/logout", h.HandleLogout)

	r.Get("/", h.HandleDashboard)
	r.Get("/businesses", h.HandleBusinessesPage)
	r.Get("/certificates", h.HandleCertificatesPage)

	r.Get("/api/pool-stats", h.HandlePoolStats)
	r.Post("/businesses/{id}/activate", h.HandleActivateBusiness)
	r.Post("/businesses/{id}/suspend", h.HandleSuspendBusiness)
	r.Post("/certificates/{id}/revoke", h.HandleRevokeCertificate)
	r.Post("/certificates/upload", h.HandleUploadCertificate)
}

type loginPageData struct {
	Unauthorized bool
	Error        string
	Email        string
}

// HandleLoginPage renders the login form. The guard has already bounced
// privileged sessions to the console root before this runs.
func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginPageData{
		Unauthorized: r.URL.Query().Get("error") == "unauthorized",
	})
}

// HandleLoginSubmit verifies the credentials with the identity provider and
// issues a session. A verified caller without the superadmin claim never gets
// a session at all; there is nothing a non-superadmin can do here.
func (h *Handler) HandleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, loginPageData{Error: "Malformed form submission."})
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	verdict, err := h.auth.SignIn(r.Context(), email, password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncrementAuthFailures()
		}
		msg := "Sign-in failed, please try again."
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			msg = "Invalid email or password."
		}
		h.logger.WarnContext(r.Context(), "sign-in rejected",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.renderLogin(w, r, loginPageData{Error: msg, Email: email})
		return
	}

	if !verdict.IsSuperadmin {
		if h.metrics != nil {
			h.metrics.IncrementAuthFailures()
		}
		h.logger.WarnContext(r.Context(), "sign-in refused for non-superadmin",
			"subject", verdict.Subject,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.renderLogin(w, r, loginPageData{Unauthorized: true, Email: email})
		return
	}

	if _, err := h.sessions.Issue(w, r, verdict.Subject, verdict.Email, true); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue session",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.renderLogin(w, r, loginPageData{Error: "Sign-in failed, please try again.", Email: email})
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementSessionsIssued()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout invalidates the session and returns to the login page.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, r)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// HandlePoolStats returns the recomputed pool aggregate.
func (h *Handler) HandlePoolStats(w http.ResponseWriter, r *http.Request) {
	ident := guard.IdentityFromContext(r.Context())
	stats, err := h.backend.PoolStats(r.Context(), ident)
	if err != nil {
		h.writeActionError(w, r, "pool stats fetch failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleActivateBusiness transitions a business to active.
func (h *Handler) HandleActivateBusiness(w http.ResponseWriter, r *http.Request) {
	h.transitionBusiness(w, r, h.backend.ActivateBusiness)
}

// HandleSuspendBusiness transitions a business to suspended.
func (h *Handler) HandleSuspendBusiness(w http.ResponseWriter, r *http.Request) {
	h.transitionBusiness(w, r, h.backend.SuspendBusiness)
}

func (h *Handler) transitionBusiness(w http.ResponseWriter, r *http.Request,
	action func(context.Context, *session.Identity, id.BusinessID) (*businessmodels.Business, error)) {
	businessID, err := id.ParseBusinessID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ident := guard.IdentityFromContext(r.Context())
	business, err := action(r.Context(), ident, businessID)
	if err != nil {
		if h.metrics != nil && isTransitionRejection(err) {
			h.metrics.IncrementTransitionRejections("business")
		}
		h.writeActionError(w, r, "business transition failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "business transitioned",
		"business_id", business.ID.String(),
		"status", business.Status,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	httputil.WriteJSON(w, http.StatusOK, business)
}

// HandleRevokeCertificate revokes a pool certificate. A repeat revoke comes
// back from the backend as a conflict and is surfaced to the operator with
// the current-state detail intact.
func (h *Handler) HandleRevokeCertificate(w http.ResponseWriter, r *http.Request) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ident := guard.IdentityFromContext(r.Context())
	result, err := h.backend.RevokeCertificate(r.Context(), ident, certID)
	if err != nil {
		if h.metrics != nil && isTransitionRejection(err) {
			h.metrics.IncrementTransitionRejections("certificate")
		}
		h.writeActionError(w, r, "certificate revocation failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "certificate revoked",
		"certificate_id", result.ID.String(),
		"identifier", result.Identifier,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// maxUploadSize bounds certificate uploads; p12 bundles are a few kilobytes.
const maxUploadSize = 5 << 20

// HandleUploadCertificate accepts a signing certificate for the pool.
func (h *Handler) HandleUploadCertificate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed upload form"))
		return
	}

	file, header, err := r.FormFile("p12_file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "certificate file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to read certificate file"))
		return
	}

	ident := guard.IdentityFromContext(r.Context())
	result, err := h.backend.UploadCertificate(r.Context(), ident, backend.UploadRequest{
		Identifier:  r.FormValue("identifier"),
		TeamID:      r.FormValue("team_id"),
		P12:         payload,
		P12Filename: header.Filename,
		P12Password: r.FormValue("p12_password"),
	})
	if err != nil {
		h.writeActionError(w, r, "certificate upload failed", err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementCertificateUploads()
	}
	h.logger.InfoContext(r.Context(), "certificate uploaded",
		"identifier", result.Identifier,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// isTransitionRejection reports whether an error is an illegal-transition
// rejection rather than a transport or auth problem.
func isTransitionRejection(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeInvariantViolation)
}

func (h *Handler) writeActionError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData) {
	h.renderPage(w, r, "login.tmpl", data)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template render failed",
			"template", name,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
}
