// Package server exposes the insight engine over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Veraticus/finsight/internal/insight"
	"github.com/Veraticus/finsight/internal/model"
)

// DefaultHistoryLimit is the page size of GET /api/reports.
const DefaultHistoryLimit = 20

const (
	maxHistoryLimit = 100
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Engine is the part of the insight engine the API serves.
type Engine interface {
	ComputeInsight(ctx context.Context, s model.Snapshot, question string) model.InsightReport
	Compare(ctx context.Context, base model.Snapshot, overrides model.Overrides) insight.WhatIfResult
	ActiveProvider() model.ProviderName
	SwitchProvider(name model.ProviderName) error
	TestConnection(ctx context.Context) bool
}

// ReportStore keeps the report history.
type ReportStore interface {
	SaveReport(ctx context.Context, r *model.StoredReport) error
	GetReport(ctx context.Context, id string) (*model.StoredReport, error)
	ListReports(ctx context.Context, limit int) ([]model.StoredReport, error)
	DeleteReport(ctx context.Context, id string) error
}

// Config configures a Server.
type Config struct {
	Engine Engine

	// Store is optional; without it reports are not kept and the history
	// endpoints answer 503.
	Store ReportStore

	Logger *slog.Logger

	// RateLimit caps analysis requests per client IP per second; 0 disables
	// limiting. RateBurst is the bucket size.
	RateLimit float64
	RateBurst int
}

// Server routes API requests to the engine and the report store.
type Server struct {
	engine  Engine
	store   ReportStore
	logger  *slog.Logger
	router  *mux.Router
	limiter *clientLimiter
}

// New creates a server with its routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative")
	}

	s := &Server{
		engine: cfg.Engine,
		store:  cfg.Store,
		logger: cfg.Logger,
		router: mux.NewRouter(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/insight", s.limitAnalysis(s.handleInsight)).Methods(http.MethodPost)
	api.HandleFunc("/simulate", s.limitAnalysis(s.handleSimulate)).Methods(http.MethodPost)
	api.HandleFunc("/provider", s.handleGetProvider).Methods(http.MethodGet)
	api.HandleFunc("/provider", s.handleSwitchProvider).Methods(http.MethodPut)
	api.HandleFunc("/provider/test", s.limitAnalysis(s.handleTestProvider)).Methods(http.MethodPost)
	api.HandleFunc("/reports", s.handleListReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.handleGetReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.handleDeleteReport).Methods(http.MethodDelete)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Provider calls may take up to the request timeout.
		WriteTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down API server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
