// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/poiesic/foodfacts/analysis"
	"github.com/poiesic/foodfacts/storage"
)

// Config controls the dashboard server.
type Config struct {
	Addr string
	// Limit bounds the per country tables.
	Limit int
	// TopN bounds the product rankings.
	TopN        int
	MaxEnergy   float64
	CORSOrigins []string
}

// DefaultConfig returns the standard dashboard settings.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8501",
		Limit:       15,
		TopN:        20,
		MaxEnergy:   10000,
		CORSOrigins: []string{"*"},
	}
}

// Server serves the dashboard.
type Server struct {
	products storage.ProductRepository
	analyzer *analysis.Analyzer
	cfg      Config
	metrics  *metrics
	logger   *slog.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a dashboard server over products.
func New(products storage.ProductRepository, cfg Config, opts ...Option) (*Server, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}
	if cfg.Limit < 1 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.TopN < 1 {
		cfg.TopN = DefaultConfig().TopN
	}

	s := &Server{
		products: products,
		cfg:      cfg,
		metrics:  newMetrics(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	analyzer, err := analysis.NewAnalyzer(products,
		analysis.WithLogger(s.logger),
		analysis.WithMaxEnergy(cfg.MaxEnergy),
		analysis.WithMonitor(s.metrics))
	if err != nil {
		return nil, err
	}
	s.analyzer = analyzer
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Route("/countries", func(r chi.Router) {
			r.Get("/products", s.handleCountryCounts)
			r.Get("/profiles", s.handleCountryProfiles)
			r.Get("/{metric}", s.handleCountryAverages)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleExplore)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/top/{metric}", s.handleTopProducts)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
