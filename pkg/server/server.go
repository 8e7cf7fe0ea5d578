package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/geo"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/session"
)

// DefaultShutdownTimeout bounds graceful shutdown in ListenAndServe.
const DefaultShutdownTimeout = 5 * time.Second

// Config wires a Server to its data.
type Config struct {
	// Runner renders artifacts. Nil builds an uncached runner.
	Runner *pipeline.Runner

	// Dataset is served by every endpoint. Flow endpoints need a schema
	// with an asylum column.
	Dataset *dataset.Dataset

	// MapDataset feeds the map and timelapse endpoints. Nil uses Dataset.
	MapDataset *dataset.Dataset

	// Regions enable the map and timelapse endpoints.
	Regions []geo.Region

	// Options are the defaults that request parameters override.
	Options pipeline.Options

	// Store holds timelapse sessions. Nil uses a MemoryStore.
	Store session.Store

	// SessionTTL is the idle lifetime of a timelapse session.
	SessionTTL time.Duration

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	ds       *dataset.Dataset
	mapDS    *dataset.Dataset
	regions  []geo.Region
	names    []string
	opts     pipeline.Options
	store    session.Store
	ttl      time.Duration
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader
}

// New validates cfg.Options and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Dataset == nil {
		return nil, fmt.Errorf("server: dataset is required")
	}
	if cfg.MapDataset == nil {
		cfg.MapDataset = cfg.Dataset
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	opts := cfg.Options
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	s := &Server{
		runner:  cfg.Runner,
		ds:      cfg.Dataset,
		mapDS:   cfg.MapDataset,
		regions: cfg.Regions,
		names:   geo.Names(cfg.Regions),
		opts:    opts,
		store:   cfg.Store,
		ttl:     cfg.SessionTTL,
		logger:  cfg.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/options/{field}", s.handleOptions)
		r.Get("/years", s.handleYears)
		r.Get("/flow", s.handleFlow)
		r.Get("/map/{year}", s.handleMap)
		r.Get("/sessions/{id}", s.handleSession)
	})
	r.Get("/ws/timelapse", s.handleTimelapse)
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reapCtx, stopReap := context.WithCancel(ctx)
	defer stopReap()
	go session.Reap(reapCtx, s.store, session.DefaultCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if m, ok := s.store.(*session.MemoryStore); ok {
		m.Close()
	}
	return err
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
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
