package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harryviennot/stampeo-admin/internal/backend"
	"github.com/harryviennot/stampeo-admin/internal/console"
	"github.com/harryviennot/stampeo-admin/internal/guard"
	"github.com/harryviennot/stampeo-admin/internal/idp"
	"github.com/harryviennot/stampeo-admin/internal/platform/config"
	"github.com/harryviennot/stampeo-admin/internal/platform/health"
	"github.com/harryviennot/stampeo-admin/internal/platform/logger"
	"github.com/harryviennot/stampeo-admin/internal/platform/metrics"
	"github.com/harryviennot/stampeo-admin/internal/platform/middleware"
	"github.com/harryviennot/stampeo-admin/internal/platform/tracer"
	"github.com/harryviennot/stampeo-admin/internal/session"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// The console handlers and the access guard carry the actual behavior.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing stampeo-admin",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"backend_api_url", cfg.BackendAPIURL,
	)

	if cfg.Environment == "production" && cfg.SessionSigningKey == config.DevSigningKey {
		log.Error("refusing to start: SESSION_SIGNING_KEY must be set in production")
		os.Exit(1)
	}

	m := metrics.New()

	var tr tracer.Tracer
	if cfg.Environment == "production" {
		tr = tracer.NewOTel()
	} else {
		tr = tracer.NewNoop()
	}

	backendClient := backend.New(cfg.BackendAPIURL, cfg.BackendTimeout, tr, backend.WithMetrics(m))
	authenticator := idp.NewHTTPClient(cfg.IDPURL, cfg.BackendTimeout)
	resolver := session.NewResolver(cfg.SessionSigningKey, cfg.SessionTTL, cfg.SessionRefreshWindow, log)
	consoleHandler := console.New(backendClient, authenticator, resolver, m, log)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("backend", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return backendClient.Ping(ctx)
	})

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.EndpointLatency(m.ObserveEndpointLatency))

	// Operational surface stays outside the guard so probes and scrapes
	// never need a session.
	healthHandler.Register(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(guard.Middleware(resolver, m, log))
		consoleHandler.Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
