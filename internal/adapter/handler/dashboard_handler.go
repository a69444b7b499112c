package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DashboardHandler renders the chart page and the Grafana embed page.
type DashboardHandler struct {
	grafanaURL string
	logger     *slog.Logger
}

func NewDashboardHandler(grafanaURL string, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{grafanaURL: grafanaURL, logger: logger}
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", nil)
}

func (h *DashboardHandler) Grafana(w http.ResponseWriter, r *http.Request) {
	h.render(w, "grafana.html", map[string]string{"GrafanaURL": h.grafanaURL})
}

func (h *DashboardHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
