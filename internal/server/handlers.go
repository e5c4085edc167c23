package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
)

// TaskListResponse is the body of GET /api/notion/tasks.
type TaskListResponse struct {
	Tasks []model.Issue `json:"tasks"`
	Total int           `json:"total"`
}

// UpdateStatusRequest is the body of POST /api/notion/update-status.
type UpdateStatusRequest struct {
	PageID   string `json:"page_id"`
	Status   string `json:"status"`
	Property string `json:"status_property_name"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required),
		validation.Field(&r.Status, validation.Required),
	)
}

// UpdateStatusResponse is the body returned by a successful status update.
type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CommentRequest is the body of POST /api/notion/comments.
type CommentRequest struct {
	PageID string `json:"page_id"`
	Text   string `json:"text"`
}

func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required),
		validation.Field(&r.Text, validation.Required),
	)
}

// ConnectionResponse is the body of GET /api/notion/test-connection.
type ConnectionResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

const (
	errNoToken    = "Notion API key not configured"
	errNoDatabase = "Notion database ID not configured"
)

// GET /api/notion/tasks?status_filter=&limit=
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	creds := s.credentials(r)
	if creds.Token.IsZero() {
		writeError(w, http.StatusBadRequest, errNoToken)
		return
	}
	if creds.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, errNoDatabase)
		return
	}

	limit := source.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	tracker, release, ok := s.tracker(w, creds)
	if !ok {
		return
	}
	defer release()

	issues, err := tracker.ListIssues(r.Context(), source.ListOptions{
		DatabaseID: creds.DatabaseID,
		Status:     r.URL.Query().Get("status_filter"),
		Limit:      limit,
	})
	if err != nil {
		s.logger.Error("error fetching tasks", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, TaskListResponse{Tasks: issues, Total: len(issues)})
}

// GET /api/notion/tasks/{id}
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	creds := s.credentials(r)
	if creds.Token.IsZero() {
		writeError(w, http.StatusBadRequest, errNoToken)
		return
	}

	tracker, release, ok := s.tracker(w, creds)
	if !ok {
		return
	}
	defer release()

	issue, err := tracker.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("error fetching task", "page_id", r.PathValue("id"), "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, issue)
}

// POST /api/notion/update-status
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	creds := s.credentials(r)
	if creds.Token.IsZero() {
		writeError(w, http.StatusBadRequest, errNoToken)
		return
	}

	tracker, release, ok := s.tracker(w, creds)
	if !ok {
		return
	}
	defer release()

	if err := tracker.UpdateStatus(r.Context(), req.PageID, req.Status, req.Property); err != nil {
		s.logger.Error("error updating task status", "page_id", req.PageID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Info("updated task status", "page_id", req.PageID, "status", req.Status)
	writeJSON(w, UpdateStatusResponse{
		Success: true,
		Message: "Task status updated to " + req.Status,
	})
}

// POST /api/notion/comments
func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	creds := s.credentials(r)
	if creds.Token.IsZero() {
		writeError(w, http.StatusBadRequest, errNoToken)
		return
	}

	tracker, release, ok := s.tracker(w, creds)
	if !ok {
		return
	}
	defer release()

	if err := tracker.AddComment(r.Context(), req.PageID, req.Text); err != nil {
		s.logger.Error("error adding comment", "page_id", req.PageID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// GET /api/notion/test-connection
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	creds := s.credentials(r)
	if creds.Token.IsZero() {
		writeJSONStatus(w, http.StatusBadRequest, ConnectionResponse{Error: errNoToken})
		return
	}

	s.logger.Info("testing notion connection",
		"key", creds.Token.Preview(), "database_id", creds.DatabaseID)

	tracker, release, err := s.factory(creds)
	if err != nil {
		writeJSON(w, ConnectionResponse{Error: err.Error()})
		return
	}
	defer release()

	if ok, msg := tracker.TestConnection(r.Context()); !ok {
		writeJSON(w, ConnectionResponse{
			Message: "Failed to connect to Notion API",
			Error:   msg,
		})
		return
	}

	writeJSON(w, ConnectionResponse{Connected: true, Message: "Connected to Notion API"})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
