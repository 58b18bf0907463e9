// Package api exposes the board's command surface over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tallgrasslabs/choresheet/internal/board"
)

// Server represents the API server
type Server struct {
	board  *board.Coordinator
	router chi.Router
}

// NewServer creates a new API server over the given board
func NewServer(b *board.Coordinator) *Server {
	s := &Server{
		board:  b,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/api/v1/health", s.HealthCheck)

	// Task board
	r.Get("/api/v1/tasks", s.ListTasks)
	r.Post("/api/v1/refresh", s.RefreshTasks)
	r.Post("/api/v1/tasks/{name}/complete", s.CompleteTask)
	r.Post("/api/v1/tasks/{name}/press", s.PressTask)
	r.Post("/api/v1/tasks/{name}/reopen", s.ReopenTask)
}

// Router returns the chi router for use with http.Server
func (s *Server) Router() http.Handler {
	return s.router
}

// CORS allows browser dashboards on other origins to hit the API
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
