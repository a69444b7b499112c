package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"barflow/internal/application/service"
	"barflow/internal/domain/model"
)

// IngestRunner starts ingestion runs and remembers the last one.
type IngestRunner interface {
	Trigger(ctx context.Context) (string, error)
	LastReport() *model.IngestReport
}

type IngestHandler struct {
	runner IngestRunner
	// runCtx outlives the request that triggered the run.
	runCtx context.Context
	logger *slog.Logger
}

func NewIngestHandler(runCtx context.Context, runner IngestRunner, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{runner: runner, runCtx: runCtx, logger: logger}
}

// Trigger serves POST /api/ingest: 202 with the run id, 409 if a run is active.
func (h *IngestHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	runID, err := h.runner.Trigger(h.runCtx)
	if errors.Is(err, service.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to trigger ingestion", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("ingestion run triggered", "run_id", runID)
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

// Last serves GET /api/ingest/last.
func (h *IngestHandler) Last(w http.ResponseWriter, r *http.Request) {
	report := h.runner.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "no ingestion run yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
