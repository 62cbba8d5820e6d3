package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// DefaultRequestTimeout bounds a single request, ingestion included.
const DefaultRequestTimeout = 2 * time.Minute

// ErrMissingRetrievalService is returned when NewServer is given a nil session.
var ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

// Server serves the JSON API for one retrieval session.
type Server struct {
	retrieval driving.RetrievalService
	router    chi.Router
	timeout   time.Duration
	mounts    map[string]http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout overrides DefaultRequestTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMount attaches an extra handler under pattern, e.g. the MCP endpoint.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.mounts[pattern] = h
		}
	}
}

// NewServer builds the router for retrieval.
func NewServer(retrieval driving.RetrievalService, opts ...Option) (*Server, error) {
	if retrieval == nil {
		return nil, ErrMissingRetrievalService
	}

	s := &Server{
		retrieval: retrieval,
		timeout:   DefaultRequestTimeout,
		mounts:    make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))

		r.Post("/ingest", s.handleIngest)
		r.Post("/ask", s.handleAsk)
		r.Post("/save", s.handleSave)
		r.Get("/history", s.handleHistory)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Get("/{id}", s.handleGetDocument)
		})
	})

	for pattern, h := range s.mounts {
		r.Mount(pattern, h)
	}

	return r
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request through the package logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d (%s, id=%s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			middleware.GetReqID(r.Context()))
	})
}
