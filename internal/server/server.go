// Package server wires the application together: database, services,
// handlers, routes, and the HTTP server lifecycle.
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

	"github.com/silenci4/flask-template-blog/internal/auth"
	"github.com/silenci4/flask-template-blog/internal/handler"
	"github.com/silenci4/flask-template-blog/internal/middleware"
	sqliteRepo "github.com/silenci4/flask-template-blog/internal/repository/sqlite"
	"github.com/silenci4/flask-template-blog/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port          int
	TemplateDir   string
	StaticDir     string
	DBPath        string
	SessionSecret string

	// GitHub OAuth is optional; sign-in routes are registered only when
	// all three values are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database (creating the schema if absent), assembles the
// dependency graph, and mounts all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

func (s *Server) setupRoutes() error {
	sessions, err := auth.NewSessionService(s.config.SessionSecret)
	if err != nil {
		return err
	}

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" && s.config.GitHubCallbackURL != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authSvc := service.NewAuthService(s.db, auth.NewPasswordService(), s.logger)
	postSvc := service.NewPostService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, sessions, github, render, s.logger)
	postHandler := handler.NewPostHandler(postSvc, render, s.logger)
	pageHandler := handler.NewPageHandler(render)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Identity resolution runs on every route; the stricter guards below
	// build on it.
	s.router.Use(auth.WithUser(sessions, s.db))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/", postHandler.HandleList)
	s.router.Get("/about", pageHandler.HandleAbout)
	s.router.Get("/contact", pageHandler.HandleContact)

	s.router.Get("/register", authHandler.HandleRegisterPage)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Get("/login", authHandler.HandleLoginPage)
	s.router.Post("/login", authHandler.HandleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/logout", authHandler.HandleLogout)
	})

	s.router.Get("/post/{postID}", postHandler.HandleShow)
	s.router.Post("/post/{postID}", postHandler.HandleComment)

	// Authoring routes: authenticated admin only, 403 otherwise.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/new-post", postHandler.HandleNewPage)
		r.Post("/new-post", postHandler.HandleCreate)
		r.Get("/edit-post/{postID}", postHandler.HandleEditPage)
		r.Post("/edit-post/{postID}", postHandler.HandleEdit)
		r.Get("/delete/{postID}", postHandler.HandleDelete)
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.NotFound(pageHandler.HandleNotFound)

	return nil
}

// Router exposes the assembled handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully and closes the database.
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
