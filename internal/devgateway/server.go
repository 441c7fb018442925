// Package devgateway is an in-memory stand-in for the LinkShort gateway. It
// serves the same routes under /gateway so the client can be exercised
// without the real backend.
package devgateway

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/linkshort/pkg/model"
)

// Config holds dev gateway settings.
type Config struct {
	Addr      string        // Listen address (default ":8888")
	Secret    string        // HMAC key for issued tokens
	TokenTTL  time.Duration // Lifetime of issued tokens
	ShortBase string        // Prefix for shortUrl; empty derives it from the request host
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:      ":8888",
		Secret:    "linkshort-dev-secret",
		TokenTTL:  24 * time.Hour,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Server is the development gateway.
type Server struct {
	router chi.Router
	logger *slog.Logger
	config Config
	now    func() time.Time

	mu      sync.Mutex
	users   map[string]*account
	links   map[string]*model.ShortURL // by ID
	codes   map[string]string          // short code -> ID
	revoked map[string]time.Time       // token ID -> expiry
}

// Option configures optional Server settings.
type Option func(*Server)

// WithClock overrides the server's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server with all routes registered.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger.With("component", "devgateway"),
		config:  cfg,
		now:     time.Now,
		users:   make(map[string]*account),
		links:   make(map[string]*model.ShortURL),
		codes:   make(map[string]string),
		revoked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/gateway", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Get("/urls/validate/{code}", s.handleValidateCode)
		r.Get("/urls/redirect/{code}", s.handleRedirect)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/logout", s.handleLogout)
			r.Get("/urls", s.handleListURLs)
			r.Post("/urls", s.handleCreateURL)
			r.Post("/urls/custom", s.handleCreateCustomURL)
			r.Delete("/urls/{id}", s.handleDeleteURL)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users, links := len(s.users), len(s.links)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"users":  users,
		"links":  links,
	})
}
