package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"status-page/pkg/render"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Server represents the HTTP server for the status page.
type Server struct {
	logger   *logrus.Logger
	handlers *Handlers
	registry *prometheus.Registry
}

// NewServer creates a new Server instance with the provided page source, renderer, metrics registry and logger.
func NewServer(source PageSource, renderer *render.Renderer, registry *prometheus.Registry, logger *logrus.Logger) *Server {
	return &Server{
		logger:   logger,
		handlers: NewHandlers(logger, source, renderer),
		registry: registry,
	}
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handlers.Page).Methods("GET")
	router.HandleFunc("/health", s.handlers.HealthJSON).Methods("GET")

	router.HandleFunc("/api/status", s.handlers.GetStatusJSON).Methods("GET")
	router.HandleFunc("/api/status/{environmentName}", s.handlers.GetEnvironmentStatusJSON).Methods("GET")

	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	router.Use(s.requestIDMiddleware)
	router.Use(s.loggingMiddleware)

	return router
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		requestLogger(s.logger, r).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("Request processed")
	})
}

func requestLogger(logger *logrus.Logger, r *http.Request) *logrus.Entry {
	requestID, _ := r.Context().Value(requestIDKey{}).(string)
	return logger.WithField("request_id", requestID)
}

// Start begins listening for HTTP requests on the specified address.
func (s *Server) Start(addr string) error {
	handler := s.setupRoutes()
	s.logger.Infof("Starting status page server on %s", addr)
	return http.ListenAndServe(addr, handler)
}
