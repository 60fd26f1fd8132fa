// Package server exposes the graph service over HTTP and WebSocket.
//
// Routes:
//
//	GET  /healthz              liveness probe
//	GET  /api/queries          canned query catalog
//	GET  /api/queries/{name}   run a canned query, arguments from the query string
//	POST /api/query            run {"cypher": "...", "params": {...}}
//	GET  /api/ws               query session over a WebSocket
//	GET  /view/{name}          canned query rendered as an echarts HTML page
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/render"
)

// Querier is the part of neoviz.GraphService used by the server.
type Querier interface {
	Query(ctx context.Context, cypher string, params map[string]any) (*neoviz.QueryResult, error)
	Named(ctx context.Context, name string, args map[string]string) (*neoviz.QueryResult, error)
	Catalog() *neoviz.Catalog
}

var _ Querier = (*neoviz.GraphService)(nil)

// Server routes HTTP requests to a Querier.
type Server struct {
	svc      Querier
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New creates a server. allowedOrigins restricts websocket upgrades; empty allows any.
func New(svc Querier, logger *log.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/queries", s.handleCatalog)
		r.Get("/queries/{name}", s.handleNamed)
		r.Post("/query", s.handleQuery)
		r.Get("/ws", s.handleWebSocket)
	})
	r.Get("/view/{name}", s.handleView)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type queryRequest struct {
	Cypher string         `json:"cypher"`
	Params map[string]any `json:"params"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog().List())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res, err := s.svc.Query(r.Context(), req.Cypher, req.Params)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNamed(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Named(r.Context(), chi.URLParam(r, "name"), queryArgs(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	res, err := s.svc.Named(r.Context(), name, queryArgs(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.Graph == nil {
		writeError(w, http.StatusNotFound, "query "+name+" returned no graph")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, *res.Graph, name); err != nil {
		s.logger.Error("render failed", "query", name, "err", err)
	}
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("query failed", "path", r.URL.Path, "err", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, neoviz.ErrEmptyQuery), errors.Is(err, neoviz.ErrUnknownQuery),
		errors.Is(err, neoviz.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, neoviz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

func queryArgs(r *http.Request) map[string]string {
	values := r.URL.Query()
	args := make(map[string]string, len(values))
	for key := range values {
		args[key] = values.Get(key)
	}
	return args
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
