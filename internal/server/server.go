// Package server exposes the HTTP trigger for the ingestion pipeline.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/amishk599/jobfeed/internal/ingest"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Runner is one pipeline cycle.
type Runner interface {
	Run(ctx context.Context) (ingest.Result, error)
}

type ingestResponse struct {
	OK       bool     `json:"ok"`
	RunID    string   `json:"run_id"`
	Inserted int      `json:"inserted"`
	Sources  []string `json:"sources"`
}

type statusResponse struct {
	OK    bool   `json:"ok"`
	RunID string `json:"run_id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server serves POST /ingest and GET /health.
type Server struct {
	token   string
	runner  Runner
	logger  *slog.Logger
	srv     *http.Server
	running atomic.Bool
}

// New creates a trigger server listening on addr. Requests must carry token
// in the token query parameter; an empty token rejects every request.
func New(addr, token string, runner Runner, logger *slog.Logger) *Server {
	s := &Server{
		token:  token,
		runner: runner,
		logger: logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{OK: true})
	})
	return mux
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("trigger server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("trigger server shutdown with error", "error", err)
		return err
	}
	s.logger.Info("trigger server shutdown complete")
	return nil
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r.URL.Query().Get("token")) {
		s.logger.Warn("rejected ingest trigger", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, statusResponse{OK: false})
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, statusResponse{OK: false, Error: "ingestion already running"})
		return
	}
	defer s.running.Store(false)

	res, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("triggered ingestion failed", "run_id", res.RunID, "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			OK:    false,
			RunID: res.RunID,
			Error: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		OK:       true,
		RunID:    res.RunID,
		Inserted: res.Inserted,
		Sources:  nonNil(res.Sources),
	})
}

func (s *Server) authorized(given string) bool {
	if s.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.token)) == 1
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
