package adapthttp

import (
	"log/slog"
	"net/http"
	"time"

	"propal/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth    *app.AuthService
	catalog *app.CatalogService

	webDir         string
	allowedOrigins []string
	cookieTTL      time.Duration
	oidc           *OIDCProvider
	log            *slog.Logger
}

// Options carries the transport-level knobs for the server.
type Options struct {
	WebDir         string
	AllowedOrigins []string
	// CookieTTL bounds the session cookie's lifetime; it should match the
	// token's expiry window.
	CookieTTL time.Duration
	// OIDC enables the SSO login routes when non-nil.
	OIDC   *OIDCProvider
	Logger *slog.Logger
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, catalog *app.CatalogService, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		auth:           auth,
		catalog:        catalog,
		webDir:         opts.WebDir,
		allowedOrigins: opts.AllowedOrigins,
		cookieTTL:      opts.CookieTTL,
		oidc:           opts.OIDC,
		log:            log,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/signup", s.handleSignup)
	api.HandleFunc("/login", s.handleLogin)
	api.Handle("/profile", s.authMiddleware(http.HandlerFunc(s.handleProfile)))
	api.HandleFunc("/stt", s.handleSTT)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.oidc != nil {
		root.HandleFunc("/auth/sso/login", s.handleSSOLogin)
		root.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(s.corsMiddleware(withNoCache(root)))
}
