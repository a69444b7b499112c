package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"barflow/internal/application/usecase"
)

type SeriesHandler struct {
	useCase *usecase.SeriesUseCase
	logger  *slog.Logger
}

func NewSeriesHandler(useCase *usecase.SeriesUseCase, logger *slog.Logger) *SeriesHandler {
	return &SeriesHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// GetData serves GET /api/data?symbol=S[&range=-7d].
func (h *SeriesHandler) GetData(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		h.logger.Warn("symbol parameter is missing")
		writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}
	rangeExpr := r.URL.Query().Get("range")

	rows, err := h.useCase.GetSeries(r.Context(), symbol, rangeExpr)
	if err != nil {
		h.logger.Error("failed to fetch data", "symbol", symbol, "range", rangeExpr, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// GetSymbols serves GET /api/symbols.
func (h *SeriesHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.useCase.ListSymbols())
}
