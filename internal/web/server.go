// Package web exposes the generator over a small JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/logging"
	"github.com/Sergiu-D/dataforge/internal/session"
)

const maxBodyBytes = 1 << 20

// Config holds the HTTP settings.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PreviewRows    int           `mapstructure:"preview_rows"`
}

// StateReporter reports the engine selector state for health checks.
type StateReporter interface {
	State() engine.State
}

// Server is the HTTP front end of one Session.
type Server struct {
	cfg     Config
	session *session.Session
	engine  StateReporter
	log     *zap.SugaredLogger
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires routes and middleware.
func NewServer(cfg Config, sess *session.Session, eng StateReporter, log *zap.SugaredLogger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		cfg:     cfg,
		session: sess,
		engine:  eng,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.Middleware(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/types", s.handleTypes)

		r.Post("/schema/validate", s.handleValidate)
		r.Post("/schema/move", s.handleMove)

		r.Post("/generate", s.handleGenerate)
		r.Get("/dataset", s.handleDataset)
		r.Get("/download/{format}", s.handleDownload)
	})
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start listens on cfg.Addr until Shutdown.
func (s *Server) Start() error {
	s.log.Infow("starting server", "addr", s.cfg.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("json encode error", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Errorw("request error", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Debugw("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
