package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"status-page/pkg/metrics"
	"status-page/pkg/render"
	"status-page/pkg/types"
)

// Handlers contains the HTTP request handlers for the status page.
type Handlers struct {
	logger   *logrus.Logger
	source   PageSource
	renderer *render.Renderer
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(logger *logrus.Logger, source PageSource, renderer *render.Renderer) *Handlers {
	return &Handlers{
		logger:   logger,
		source:   source,
		renderer: renderer,
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// HealthJSON returns the health status of the status page service.
func (h *Handlers) HealthJSON(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	respondWithJSON(w, http.StatusOK, response)
}

// Page regenerates the HTML status page on every request.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := requestLogger(h.logger, r)

	config, err := h.source.Page(r.Context())
	if err != nil {
		metrics.RecordRender(false, time.Since(start))
		logger.WithField("error", err).Error("Failed to load page configuration")
		respondWithError(w, http.StatusInternalServerError, "Failed to load status")
		return
	}

	resp, err := h.renderer.Response(config)
	if err != nil {
		metrics.RecordRender(false, time.Since(start))
		logger.WithField("error", err).Error("Failed to render status page")
		respondWithError(w, http.StatusInternalServerError, "Failed to render status page")
		return
	}

	metrics.RecordRender(true, time.Since(start))
	metrics.SetCurrentStatus(config)
	resp.ServeHTTP(w, r)
}

// GetStatusJSON returns the aggregated page configuration.
func (h *Handlers) GetStatusJSON(w http.ResponseWriter, r *http.Request) {
	config, ok := h.loadPage(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, config)
}

// GetEnvironmentStatusJSON returns the aggregated status of a single environment.
func (h *Handlers) GetEnvironmentStatusJSON(w http.ResponseWriter, r *http.Request) {
	environmentName := mux.Vars(r)["environmentName"]

	config, ok := h.loadPage(w, r)
	if !ok {
		return
	}

	env := config.GetEnvironment(environmentName)
	if env == nil {
		respondWithError(w, http.StatusNotFound, "Environment not found")
		return
	}

	respondWithJSON(w, http.StatusOK, env)
}

func (h *Handlers) loadPage(w http.ResponseWriter, r *http.Request) (types.PageConfig, bool) {
	config, err := h.source.Page(r.Context())
	if err != nil {
		requestLogger(h.logger, r).WithField("error", err).Error("Failed to load page configuration")
		respondWithError(w, http.StatusInternalServerError, "Failed to load status")
		return types.PageConfig{}, false
	}
	return config, true
}
