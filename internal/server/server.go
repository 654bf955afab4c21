// Package server is the thin HTTP boundary over the clone pipeline:
// decode the request, delegate to the coordinator, encode the response.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/v0xg/siteclone/internal/capture"
	"github.com/v0xg/siteclone/internal/pipeline"
	"github.com/v0xg/siteclone/internal/store"
)

// Pipeline is the coordinator surface the handlers need.
type Pipeline interface {
	StartCapture(ctx context.Context, url string) (pipeline.CaptureSummary, error)
	FinishClone(ctx context.Context, id string) (pipeline.CloneResult, error)
	Summaries() []pipeline.CaptureSummary
}

// Server serves the scrape/clone API and the screenshot static tree.
type Server struct {
	pipeline      Pipeline
	screenshotDir string
	log           *slog.Logger
}

// New creates a Server. screenshotDir is the directory served under
// /public/screenshots/. A nil logger selects slog.Default.
func New(p Pipeline, screenshotDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{pipeline: p, screenshotDir: screenshotDir, log: log}
}

// Router builds the chi router for the API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/webscrape", s.handleWebscrape)
	r.Post("/clone-website", s.handleClone)
	r.Get("/scraped-data", s.handleScrapedData)
	r.Handle("/public/screenshots/*", http.StripPrefix("/public/screenshots/",
		http.FileServer(http.Dir(s.screenshotDir))))

	return r
}

type urlRequest struct {
	URL string `json:"url"`
}

type cloneRequest struct {
	URLID string `json:"url_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleWebscrape(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.pipeline.StartCapture(r.Context(), req.URL)
	if err != nil {
		s.writeDetail(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	var req cloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.pipeline.FinishClone(r.Context(), req.URLID)
	if err != nil {
		// An unknown id keeps the clone response shape: success=false
		// with a message, carried on a 404.
		s.writeJSON(w, statusFor(err), pipeline.CloneResult{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScrapedData(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Summaries())
}

// statusFor maps the pipeline's categorized errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, capture.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrNavigationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, capture.ErrNavigation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
