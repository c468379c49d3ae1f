// Package server provides the HTTP API for jai.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/legalbot/jai/internal/auth"
	"github.com/legalbot/jai/internal/chat"
	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/retrieval"
	"github.com/legalbot/jai/internal/storage"
)

// Server is the HTTP server for the jai API.
type Server struct {
	engine  *retrieval.Engine
	auth    *auth.Service
	tokens  *auth.TokenIssuer
	chat    chat.Store
	storage storage.Store
	config  *config.Config
	logger  *zap.Logger
	version string
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *retrieval.Engine,
	authService *auth.Service,
	tokens *auth.TokenIssuer,
	chatStore chat.Store,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
	version string,
) *Server {
	return &Server{
		engine:  engine,
		auth:    authService,
		tokens:  tokens,
		chat:    chatStore,
		storage: store,
		config:  cfg,
		logger:  logger,
		version: version,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/auth/register", s.handleRegister)
	r.Post("/api/v1/auth/login", s.handleLogin)
	r.Post("/api/v1/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/api/v1/ask", s.handleAsk)
		r.Get("/api/v1/history", s.handleHistory)
		r.Delete("/api/v1/history", s.handleClearHistory)
	})

	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

type contextKey string

const claimsContextKey contextKey = "session-claims"

// requireSession authenticates the request from the session cookie and puts
// the verified claims in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.tokens.CookieName())
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionClaims returns the claims stored by requireSession, or nil when the
// request did not pass through it.
func sessionClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}
