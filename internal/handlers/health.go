package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger  *slog.Logger
	checks  map[string]Pinger
	version string
}

// NewHealthHandler creates a new health handler. checks are keyed by the
// name reported in the response, e.g. the table name.
func NewHealthHandler(logger *slog.Logger, version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		checks:  checks,
		version: version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	status := http.StatusOK

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		response.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checks[name].Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "check", name, "error", err)
			response.Checks[name] = "unavailable"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	WriteJSON(w, status, response, h.logger)
}
