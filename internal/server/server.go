// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects stores, services, handlers,
// middleware and routes, and decides:
//   - Which URL patterns map to which handler functions
//   - Which routes need an authenticated caller
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB ─┬─ Articles()      → BlogService → ArticleHandler
//	             ├─ Users()         ┐
//	             └─ RefreshTokens() ┴ AuthService → AuthHandler
//	  TokenService (JWT) ───────────→ AuthService, auth.RequireAuth
//	  GitHubProvider (optional) ────→ AuthHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/sakif/devblog/internal/auth"
	"github.com/sakif/devblog/internal/config"
	"github.com/sakif/devblog/internal/handler"
	"github.com/sakif/devblog/internal/middleware"
	sqliteRepo "github.com/sakif/devblog/internal/repository/sqlite"
	"github.com/sakif/devblog/internal/service"
	"github.com/sakif/devblog/internal/validation"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after a graceful
// shutdown; callers that never call Start (tests, -routes) call Close.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every layer.
//
// Each layer only receives what it needs:
//   - Services get repository interfaces (not the concrete sqlite.DB)
//   - Handlers get services (not the repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/articles          → list articles            (public)
//	GET    /api/articles/{id}     → one article              (public)
//	POST   /api/articles          → create article           (auth)
//	PUT    /api/articles/{id}     → update own article       (auth)
//	DELETE /api/articles/{id}     → delete own article       (auth)
//	POST   /api/login             → email + password login   (public)
//	POST   /api/token             → refresh → access token   (public)
//	POST   /api/logout            → drop refresh token       (auth)
//	GET    /api/me                → current user             (auth)
//	GET    /auth/github/login     → GitHub redirect          (when configured)
//	GET    /auth/github/callback  → GitHub completion        (when configured)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP: extracts the real client IP from proxy headers
//  3. Logger: logs each request with its request id and timing
//  4. Recoverer: catches panics and returns 500 instead of crashing
//  5. SetContentType: every response from this API is JSON
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(render.SetContentType(render.ContentTypeJSON))

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	validator := validation.New()

	blogService := service.NewBlogService(s.db.Articles(), s.logger)
	authService := service.NewAuthService(s.db.Users(), s.db.RefreshTokens(), tokens, passwords, s.logger)

	// A nil *GitHubProvider stored in the interface would not compare equal
	// to nil, so only assign when configured.
	var github handler.OAuthProvider
	if s.config.Auth.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.Auth.GitHubClientID,
			s.config.Auth.GitHubClientSecret,
			s.config.Auth.GitHubCallbackURL,
		)
	}

	articleHandler := handler.NewArticleHandler(blogService, validator, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, validator, handler.CookieConfig{
		MaxAge: tokens.TTL(),
		Secure: s.config.Auth.SecureCookie,
	}, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/articles", articleHandler.HandleList)
		r.Get("/articles/{id}", articleHandler.HandleGet)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/token", authHandler.HandleToken)

		// Protected routes: r.Group shares the path prefix but gets its own
		// middleware stack.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/articles", articleHandler.HandleCreate)
			r.Put("/articles/{id}", articleHandler.HandleUpdate)
			r.Delete("/articles/{id}", articleHandler.HandleDelete)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		s.logger.Info("GitHub login enabled", slog.String("callback", s.config.Auth.GitHubCallbackURL))
	}

	return nil
}

// Router returns the configured router, for tests and route documentation.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close releases the database. Only needed when Start is never called.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (ShutdownTimeout)
//  3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	// Ensure the database is closed when the server stops.
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
