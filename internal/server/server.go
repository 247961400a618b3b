// Package server exposes the simulator and the chemical catalog over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chemlab/internal/core"
	"chemlab/internal/pubchem"
	"chemlab/internal/store"
)

// Simulator runs beaker simulations.
type Simulator interface {
	Simulate(ctx context.Context, req core.Request) (*core.Result, error)
	InitialColor(name string) string
}

// Shelves lists the catalog grouped by category.
type Shelves interface {
	Shelves(ctx context.Context) (map[string][]store.Chemical, error)
}

// Importer adds PubChem compounds to the catalog.
type Importer interface {
	Import(ctx context.Context, req store.ImportRequest) (store.Chemical, bool, error)
}

// Searcher finds PubChem compounds by keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) (pubchem.SearchResult, error)
}

// Options wires a Server. Shelves and Importer may be nil when no catalog
// is configured; the catalog routes then degrade like a failing store.
type Options struct {
	Simulator    Simulator
	Shelves      Shelves
	Importer     Importer
	Searcher     Searcher
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the chemlab HTTP API.
type Server struct {
	router   *mux.Router
	sim      Simulator
	shelves  Shelves
	importer Importer
	searcher Searcher
	logger   *zap.Logger
	metrics  *metrics
	registry *prometheus.Registry
	readTO   time.Duration
	writeTO  time.Duration
}

// New builds the router and registers all routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()

	s := &Server{
		router:   mux.NewRouter(),
		sim:      opts.Simulator,
		shelves:  opts.Shelves,
		importer: opts.Importer,
		searcher: opts.Searcher,
		logger:   logger,
		metrics:  newMetrics(reg),
		registry: reg,
		readTO:   opts.ReadTimeout,
		writeTO:  opts.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(corsMiddleware)
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/health", s.health).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/react", s.react).Methods("POST", "OPTIONS")
	api.HandleFunc("/chemical-color/{name}", s.chemicalColor).Methods("GET")
	api.HandleFunc("/chemicals", s.listChemicals).Methods("GET")
	api.HandleFunc("/admin/add-chemical", s.addChemical).Methods("POST", "OPTIONS")
	api.HandleFunc("/admin/search", s.searchChemicals).Methods("GET")
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.readTO,
		WriteTimeout: s.writeTO,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
