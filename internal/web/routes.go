package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-login/internal/web/handlers"
	"github.com/kozaktomas/face-login/internal/web/middleware"
	"github.com/kozaktomas/face-login/internal/web/static"
)

// actionTimeout bounds register and login requests; detection has its own, shorter limit.
const actionTimeout = time.Minute

func (s *Server) setupRoutes() {
	faceHandler := handlers.NewFaceHandler(s.deps.Matcher, s.sessionManager, s.deps.Events, s.config.Web.PostLoginPath)
	cameraHandler := handlers.NewCameraHandler(s.config.Web.AllowedOrigins)
	statusHandler := handlers.NewStatusHandler(s.deps.Models)
	configHandler := handlers.NewConfigHandler(s.config)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.WithSession(s.sessionManager))

			r.Get("/status", statusHandler.Get)

			// Camera (websocket is long lived, so no request timeout)
			r.Get("/camera/stream", cameraHandler.Stream)
			r.Post("/camera/frame", cameraHandler.Frame)
			r.Post("/camera/disconnect", cameraHandler.Disconnect)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(actionTimeout))
				r.Post("/face/register", faceHandler.Register)
				r.Post("/face/login", faceHandler.Login)
				r.Post("/face/logout", faceHandler.Logout)
			})
		})

		r.With(middleware.RequireAuth(s.sessionManager)).Get("/face/me", faceHandler.Me)
	})

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the single-page application
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err == nil {
		defer f.Close()

		stat, err := f.Stat()
		if err == nil && !stat.IsDir() {
			w.Header().Set("Content-Type", contentType(path))
			if strings.HasPrefix(path, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	// Client side routes such as the post-login view get index.html
	if strings.HasPrefix(path, "/assets/") {
		http.NotFound(w, r)
		return
	}

	indexFile, err := fs.Open("/index.html")
	if err != nil {
		http.Error(w, "frontend not available", http.StatusNotFound)
		return
	}
	defer indexFile.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, indexFile)
}

func contentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".ico"):
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
