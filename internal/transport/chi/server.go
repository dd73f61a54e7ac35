// Package chi exposes the search HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/domain/search"
	"github.com/solrpress/solrpress/internal/format"
	"github.com/solrpress/solrpress/internal/logger"
	"github.com/solrpress/solrpress/internal/metrics"
	"github.com/solrpress/solrpress/internal/query"
	"github.com/solrpress/solrpress/internal/solr"
	"github.com/solrpress/solrpress/internal/version"
)

// Selector is the slice of the backend client the search handler needs.
type Selector interface {
	Select(ctx context.Context, q *solr.SelectQuery) (*solr.Response, error)
	Endpoint() string
}

// Gate reports cached backend availability.
type Gate interface {
	Available(ctx context.Context) bool
}

// Server handles search requests.
type Server struct {
	registry  *query.Registry
	backend   Selector
	formatter *format.Formatter
	gate      Gate
	pageSize  int
	logger    *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(registry *query.Registry, backend Selector, formatter *format.Formatter, gate Gate, pageSize int, logger *zap.Logger) *Server {
	if pageSize <= 0 {
		pageSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry:  registry,
		backend:   backend,
		formatter: formatter,
		gate:      gate,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Router assembles the route table with the standard middleware stack.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/search", s.Search)
	r.Get("/healthz", s.Health)
	r.Get("/info", s.Info)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// Search handles GET /search. Parameters mirror the generated result links:
// s (query term), offset, count, fq ("||"-joined filters), sort, order and
// server (query variant).
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	offset, err := intParam(params.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	count, err := intParam(params.Get("count"), s.pageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "count must be a positive integer")
		return
	}

	req, err := search.NewRequest(
		params.Get("s"),
		offset,
		count,
		search.ParseFilters(params.Get("fq")),
		params.Get("sort"),
		params.Get("order"),
		params.Get("server"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.gate.Available(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, s.formatter.Unavailable(req))
		return
	}

	resp, err := s.backend.Select(r.Context(), s.registry.Resolve(req.Server).Build(req))
	if err != nil {
		logger.FromContext(r.Context()).Warn("search backend error", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, s.formatter.Unavailable(req))
		return
	}

	writeJSON(w, http.StatusOK, s.formatter.Format(req, resp))
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if s.gate.Available(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "search unavailable"})
}

// Info handles GET /info: backend endpoint, reachability and build version.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint":  s.backend.Endpoint(),
		"available": s.gate.Available(r.Context()),
		"version":   version.Version,
	})
}

// requestLogger stores a request-scoped logger carrying the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
