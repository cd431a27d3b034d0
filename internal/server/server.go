// Package server exposes the HTTP API and websocket progress streams.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/config"
)

// Server is the public HTTP API server
type Server struct {
	cfg     *config.ServerConfig
	handler *Handler
	logger  *logrus.Logger
	http    *http.Server
}

// NewServer creates the API server around a prepared handler
func NewServer(cfg *config.ServerConfig, handler *Handler, logger *logrus.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Router builds the chi route tree
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulations", s.handler.CreateSimulation)
		r.Get("/simulations", s.handler.GetSimulations)
		r.Get("/simulations/{simulationID}", s.handler.GetSimulation)

		r.Post("/slips", s.handler.CreateSlip)
		r.Get("/slips/{slipID}", s.handler.GetSlip)
		r.Get("/slips/{slipID}/simulations", s.handler.GetSlipSimulations)

		r.Get("/insights/sharp-money", s.handler.GetSharpMoney)
		r.Get("/insights/hit-rates", s.handler.GetHitRates)
		r.Post("/insights/hedge", s.handler.CreateHedgePlan)
		r.Post("/insights/fatigue", s.handler.CreateFatigueAdvice)
	})

	r.Get("/ws/extractions/{extractionID}", s.handler.HandleExtractionStream)

	return r
}

// Start blocks serving HTTP until the listener fails or Shutdown runs
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // slip uploads are large
		IdleTimeout:  90 * time.Second,
	}

	s.logger.WithField("port", s.cfg.Port).Info("API server starting")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period
func (s *Server) Shutdown() error {
	if s.http == nil {
		return nil
	}
	grace := time.Duration(s.cfg.ShutdownSeconds) * time.Second
	if grace <= 0 {
		grace = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	s.logger.Info("API server shutting down")
	return s.http.Shutdown(ctx)
}

// requestLogger emits one structured line per request
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Info("Request handled")
		})
	}
}
