package handler

import (
	"log/slog"
	"net/http"

	"barflow/internal/infrastructure/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Series    *SeriesHandler
	Health    *HealthHandler
	Mode      *ModeHandler
	Ingest    *IngestHandler
	Dashboard *DashboardHandler
}

// NewRouter registers the routes and wraps them in Instrument. m may be nil,
// in which case /metrics is not served.
func NewRouter(h Handlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Dashboard.Index)
	mux.HandleFunc("GET /grafana", h.Dashboard.Grafana)

	mux.HandleFunc("GET /api/data", h.Series.GetData)
	mux.HandleFunc("GET /api/symbols", h.Series.GetSymbols)

	mux.HandleFunc("POST /api/ingest", h.Ingest.Trigger)
	mux.HandleFunc("GET /api/ingest/last", h.Ingest.Last)

	mux.HandleFunc("GET /mode", h.Mode.Current)
	mux.HandleFunc("POST /mode/test", h.Mode.SwitchToTest)
	mux.HandleFunc("POST /mode/live", h.Mode.SwitchToLive)

	mux.HandleFunc("GET /health", h.Health.Check)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	return Instrument(mux, m, logger)
}
