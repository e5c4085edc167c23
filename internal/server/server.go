// Package server exposes the tracker over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/notion"
	"github.com/nhle/bugtriage/internal/source"
)

// TokenHeader and DatabaseHeader override the configured credentials for a
// single request.
const (
	TokenHeader    = "X-Notion-Token"
	DatabaseHeader = "X-Notion-Database-Id"
)

// Credentials select the workspace and database a request works against.
type Credentials struct {
	Token      credential.Secret
	DatabaseID string
}

// TrackerFactory builds a tracker for one request. The returned func
// releases it.
type TrackerFactory func(creds Credentials) (source.Tracker, func(), error)

// NotionFactory builds Notion trackers from the application config, with
// the request's credentials taking precedence.
func NotionFactory(cfg *model.AppConfig, logger hclog.Logger) TrackerFactory {
	return func(creds Credentials) (source.Tracker, func(), error) {
		nc := notion.ConfigFromApp(cfg, creds.Token, logger)
		nc.DatabaseID = creds.DatabaseID

		svc, err := notion.New(nc)
		if err != nil {
			return nil, nil, err
		}
		return svc, svc.Close, nil
	}
}

// Server is the HTTP API server.
type Server struct {
	bind       string
	defaults   Credentials
	factory    TrackerFactory
	logger     hclog.Logger
	httpServer *http.Server
}

// NewServer creates a new API server. defaults supplies the credentials used
// when a request carries no override headers.
func NewServer(bind string, defaults Credentials, factory TrackerFactory, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		bind:     bind,
		defaults: defaults,
		factory:  factory,
		logger:   logger.Named("server"),
	}
}

// Handler returns the API's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/notion/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/notion/tasks/{id}", s.handleTask)
	mux.HandleFunc("POST /api/notion/update-status", s.handleUpdateStatus)
	mux.HandleFunc("POST /api/notion/comments", s.handleComment)
	mux.HandleFunc("GET /api/notion/test-connection", s.handleTestConnection)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening on the configured bind address. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "bind", s.bind)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// credentials resolves the request's credentials. Headers take precedence
// over the configured defaults.
func (s *Server) credentials(r *http.Request) Credentials {
	creds := s.defaults
	if token := r.Header.Get(TokenHeader); token != "" {
		creds.Token = credential.NewSecret(token)
	}
	if db := r.Header.Get(DatabaseHeader); db != "" {
		creds.DatabaseID = db
	}
	return creds
}

// tracker builds the request's tracker, writing an error response and
// returning ok=false when it cannot.
func (s *Server) tracker(w http.ResponseWriter, creds Credentials) (source.Tracker, func(), bool) {
	t, release, err := s.factory(creds)
	if err != nil {
		s.logger.Error("failed to build tracker", "error", err)
		writeError(w, statusFor(err), err.Error())
		return nil, nil, false
	}
	return t, release, true
}

// statusFor maps a tracker error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case notion.IsConfigError(err):
		return http.StatusBadRequest
	case source.IsAuthError(err):
		return http.StatusUnauthorized
	case notion.IsStatus(err, http.StatusNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}
