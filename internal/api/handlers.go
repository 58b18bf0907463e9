package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tallgrasslabs/choresheet/internal/board"
	"github.com/tallgrasslabs/choresheet/internal/version"
)

// HealthCheck handles GET /api/v1/health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.Version,
	})
}

// ListTasks handles GET /api/v1/tasks
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.board.Snapshot()
	s.jsonResponse(w, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Total: len(tasks),
	})
}

// RefreshTasks handles POST /api/v1/refresh
func (s *Server) RefreshTasks(w http.ResponseWriter, r *http.Request) {
	err := s.board.Refresh(r.Context())
	switch {
	case errors.Is(err, board.ErrRefreshInFlight):
		s.errorResponse(w, http.StatusConflict, "Refresh already in progress", err)
	case err != nil:
		s.errorResponse(w, http.StatusBadGateway, "Failed to refresh tasks", err)
	default:
		s.jsonResponse(w, http.StatusOK, SuccessResponse{Success: true, Message: "tasks refreshed"})
	}
}

// CompleteTask handles POST /api/v1/tasks/{name}/complete
func (s *Server) CompleteTask(w http.ResponseWriter, r *http.Request) {
	name, ok := s.taskName(w, r)
	if !ok {
		return
	}

	var req CompleteRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	err := s.board.CompleteTask(r.Context(), name, req.ActorID)
	switch {
	case errors.Is(err, board.ErrTaskNotFound):
		s.errorResponse(w, http.StatusNotFound, "Task not found", err)
	case err != nil:
		// The board already published the completion; only the store
		// write failed.
		s.errorResponse(w, http.StatusBadGateway, "Task completed locally but store write failed", err)
	default:
		s.jsonResponse(w, http.StatusOK, SuccessResponse{Success: true, Message: "task completed"})
	}
}

// PressTask handles POST /api/v1/tasks/{name}/press
func (s *Server) PressTask(w http.ResponseWriter, r *http.Request) {
	name, ok := s.taskName(w, r)
	if !ok {
		return
	}

	if err := s.board.RequestPending(r.Context(), name); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Task not found", err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, SuccessResponse{Success: true, Message: "task pending"})
}

// ReopenTask handles POST /api/v1/tasks/{name}/reopen
func (s *Server) ReopenTask(w http.ResponseWriter, r *http.Request) {
	name, ok := s.taskName(w, r)
	if !ok {
		return
	}

	if err := s.board.ReopenPendingTask(name); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Task not found", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SuccessResponse{Success: true, Message: "task reopened"})
}

// taskName extracts and validates the task name path parameter. Validation
// happens here so a blank name never reaches the board.
func (s *Server) taskName(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Task name is required", nil)
		return "", false
	}
	return name, true
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	s.jsonResponse(w, status, resp)
}
