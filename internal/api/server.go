// Package api exposes the crawl-and-query flow over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/types"
)

// QueryRunner is the interface the API serves.
type QueryRunner interface {
	CrawlAndQuery(ctx context.Context, req types.CrawlRequest) *types.CrawlResponse
	VisitedCount() int
}

// Server provides the REST API around the orchestrator.
type Server struct {
	mux    *http.ServeMux
	cfg    config.APIConfig
	runner QueryRunner
	logger *slog.Logger
}

// NewServer creates an API server over the given runner.
func NewServer(cfg config.APIConfig, runner QueryRunner, logger *slog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		runner: runner,
		logger: logger.With("component", "api_server"),
	}
	s.registerRoutes()
	return s
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully. Crawl requests can run for minutes, so the
// write timeout is generous.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/crawl", s.handleCrawl)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"visited_urls": s.runner.VisitedCount(),
	})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req types.CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "user_prompt is required"})
		return
	}

	s.logger.Info("crawl request received",
		"prompt", req.Prompt,
		"urls", len(req.URLs),
		"strict", req.Strict,
		"force_crawl", req.ForceCrawl,
	)
	resp := s.runner.CrawlAndQuery(r.Context(), req)

	status := http.StatusOK
	if resp.Status == types.StatusError {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, resp)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
