package web

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/config"
	"github.com/kozaktomas/face-login/internal/database"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/web/handlers"
	"github.com/kozaktomas/face-login/internal/web/middleware"
)

// Deps are the services the web server drives.
type Deps struct {
	Matcher *facematch.Matcher
	Models  handlers.ModelStatus
	Events  database.AuthEventWriter // nil disables the audit log
}

// Server represents the web server
type Server struct {
	config         *config.Config
	deps           Deps
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, deps Deps) *Server {
	r := chi.NewRouter()

	constraints := capture.Constraints{
		FacingMode: cfg.Camera.FacingMode,
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
	}
	sessionManager := middleware.NewSessionManager(cfg.Web.SessionSecret, constraints, cfg.Camera.StaleAfter)

	s := &Server{
		config:         cfg,
		deps:           deps,
		router:         r,
		sessionManager: sessionManager,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:        cfg.Web.Addr(),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down and returns once
// in-flight requests finished or shutdownTimeout passed.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.run(ctx, ln, shutdownTimeout)
}

func (s *Server) run(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	log.Printf("Starting web server on %s", ln.Addr())

	serveErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("failed to start server: %w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	shutdownErr := s.Shutdown(shutdownCtx)
	if err := <-serveErr; err != nil {
		return err
	}
	return shutdownErr
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	s.sessionManager.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
