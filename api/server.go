// Package api exposes the central system over HTTP: operation dispatch, task
// inspection, the response audit log and per charge point status.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kilianp07/ocppcs/config"
	"github.com/kilianp07/ocppcs/core/chargepoint"
	"github.com/kilianp07/ocppcs/core/cpstatus"
	"github.com/kilianp07/ocppcs/core/logger"
	"github.com/kilianp07/ocppcs/core/task"
	"github.com/kilianp07/ocppcs/core/tasklog"
)

// Executor runs a named operation from JSON parameters.
type Executor interface {
	Execute(ctx context.Context, name string, params []byte) (int, error)
}

// Server serves the HTTP API.
type Server struct {
	cfg    config.APIConfig
	exec   Executor
	tasks  task.Store
	logs   tasklog.Store
	status cpstatus.Store
	log    logger.Logger
	srv    *http.Server
}

// NewServer builds the server. logs and status may be nil, in which case the
// corresponding routes return empty lists.
func NewServer(cfg config.APIConfig, exec Executor, tasks task.Store, logs tasklog.Store, status cpstatus.Store, log logger.Logger) *Server {
	if logs == nil {
		logs = tasklog.NopStore{}
	}
	if status == nil {
		status = cpstatus.NewMemoryStore()
	}
	s := &Server{cfg: cfg, exec: exec, tasks: tasks, logs: logs, status: status, log: logger.OrNop(log)}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped with CORS.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1.5/operations/{operation}", s.handleExecute)
	api.HandleFunc("GET /api/operations", s.handleOperations)
	api.HandleFunc("GET /api/tasks", s.handleListTasks)
	api.HandleFunc("GET /api/tasks/logs", s.handleLogs)
	api.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	api.HandleFunc("GET /api/chargepoints/status", s.handleStatus)

	mux := http.NewServeMux()
	mux.Handle("/api/", requireToken(s.cfg.Token, api))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("api listening on %s", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := time.Duration(s.cfg.ShutdownSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// statusFor maps dispatch errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chargepoint.ErrValidation), errors.Is(err, chargepoint.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, chargepoint.ErrUnknownOperation):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
