package config

import (
	"os"
	"time"
)

// Server captures console level configuration.
type Server struct {
	Addr                 string
	Environment          string
	BackendAPIURL        string
	IDPURL               string
	SessionSigningKey    string
	SessionTTL           time.Duration
	SessionRefreshWindow time.Duration
	BackendTimeout       time.Duration
}

// DevSigningKey is the fallback session signing key for local development.
// Startup refuses it in production.
const DevSigningKey = "dev-secret-key-change-in-production"

// Defaults applied when the environment does not override them.
var (
	SessionTTL           = 12 * time.Hour
	SessionRefreshWindow = 1 * time.Hour
	BackendTimeout       = 10 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("STAMPEO_ADMIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	backendURL := os.Getenv("BACKEND_API_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8000"
	}

	idpURL := os.Getenv("IDP_URL")
	if idpURL == "" {
		idpURL = "http://localhost:9000"
	}

	sessionTTL := SessionTTL
	if s := os.Getenv("SESSION_TTL"); s != "" {
		if duration, err := time.ParseDuration(s); err == nil {
			sessionTTL = duration
		}
	}

	refreshWindow := SessionRefreshWindow
	if s := os.Getenv("SESSION_REFRESH_WINDOW"); s != "" {
		if duration, err := time.ParseDuration(s); err == nil {
			refreshWindow = duration
		}
	}

	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		signingKey = DevSigningKey
	}

	return Server{
		Addr:                 addr,
		Environment:          environment,
		BackendAPIURL:        backendURL,
		IDPURL:               idpURL,
		SessionSigningKey:    signingKey,
		SessionTTL:           sessionTTL,
		SessionRefreshWindow: refreshWindow,
		BackendTimeout:       BackendTimeout,
	}
}
