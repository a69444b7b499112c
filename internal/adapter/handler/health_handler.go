package handler

import (
	"log/slog"
	"net/http"

	"barflow/internal/domain/port"
)

type HealthHandler struct {
	storage port.StoragePort
	cache   port.CachePort
	logger  *slog.Logger
}

// NewHealthHandler checks the store and, when configured, the cache.
func NewHealthHandler(storage port.StoragePort, cache port.CachePort, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		cache:   cache,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	storeStatus := "healthy"
	cacheStatus := "disabled"
	overallStatus := "healthy"

	if err := h.storage.Ping(r.Context()); err != nil {
		storeStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("store health check failed", "error", err)
	}

	if h.cache != nil {
		cacheStatus = "healthy"
		if err := h.cache.Ping(r.Context()); err != nil {
			cacheStatus = "unhealthy"
			overallStatus = "degraded"
			h.logger.Warn("cache health check failed", "error", err)
		}
	}

	response := map[string]interface{}{
		"status": overallStatus,
		"checks": map[string]string{
			"store": storeStatus,
			"cache": cacheStatus,
		},
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}
