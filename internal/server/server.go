// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the composition root: the database, token/password services, the
// Google provider, the auth service, and the handlers are all constructed
// and wired here, in one place. main.go only loads config and calls New.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/legalpath/legalpath-server/internal/auth"
	"github.com/legalpath/legalpath-server/internal/config"
	"github.com/legalpath/legalpath-server/internal/handler"
	"github.com/legalpath/legalpath-server/internal/middleware"
	sqliteRepo "github.com/legalpath/legalpath-server/internal/repository/sqlite"
	"github.com/legalpath/legalpath-server/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from the given configuration.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → AuthService ← TokenService, PasswordService
//	AuthHandler ← AuthService, GoogleProvider
//
// The service receives the repository interface, the handler receives the
// service; neither layer reaches past its direct dependency.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
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
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// ROUTES:
//
//	GET  /                          liveness text
//	GET  /metrics                   prometheus metrics
//	POST /api/auth/register         create account
//	POST /api/auth/login            password login
//	POST /api/auth/logout           stateless logout
//	GET  /api/auth/test             JSON probe
//	GET  /api/auth/google           redirect to consent screen   (if configured)
//	GET  /api/auth/google/callback  complete the code flow        (if configured)
//	POST /api/auth/google/token     client-token Google login     (if configured)
//	GET  /api/me                    current profile (bearer auth)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     s.config.GoogleClientID,
			ClientSecret: s.config.GoogleClientSecret,
			CallbackURL:  s.config.DefaultGoogleCallback(),
		})
	} else {
		s.logger.Warn("Google OAuth not configured — only password auth is available")
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	authHandler := handler.NewAuthHandler(authService, google, s.config.ClientURL, s.logger)

	s.router.Get("/", handler.HandleRoot)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/test", handler.HandleTest)

			if google != nil {
				r.Get("/google", authHandler.HandleGoogleStart)
				r.Get("/google/callback", authHandler.HandleGoogleCallback)
				r.Post("/google/token", authHandler.HandleGoogleToken)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})
	})

	return nil
}

// Handler returns the root http.Handler. Tests mount it on httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases server-owned resources without serving. Start calls it on
// shutdown; tests call it directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database (flushes the WAL, releases the file
// lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
