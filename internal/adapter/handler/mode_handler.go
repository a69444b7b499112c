package handler

import (
	"log/slog"
	"net/http"

	"barflow/internal/application/service"
	"barflow/internal/domain/model"
)

// ModeHandler switches the gateway used by the next ingestion run.
type ModeHandler struct {
	modeService *service.ModeService
	log         *slog.Logger
}

func NewModeHandler(ms *service.ModeService, log *slog.Logger) *ModeHandler {
	return &ModeHandler{
		modeService: ms,
		log:         log,
	}
}

func (h *ModeHandler) SwitchToTest(w http.ResponseWriter, r *http.Request) {
	h.log.Info("received request to switch to test mode")
	h.switchMode(w, model.TestMode)
}

func (h *ModeHandler) SwitchToLive(w http.ResponseWriter, r *http.Request) {
	h.log.Info("received request to switch to live mode")
	h.switchMode(w, model.LiveMode)
}

// Current serves GET /mode.
func (h *ModeHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"mode": h.modeService.GetCurrentMode().String()})
}

func (h *ModeHandler) switchMode(w http.ResponseWriter, mode model.DataMode) {
	currentMode := h.modeService.GetCurrentMode()

	if currentMode == mode {
		h.log.Info("already in requested mode", "mode", mode.String())
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"mode":    mode.String(),
			"message": "already in requested mode",
		})
		return
	}

	h.modeService.SwitchMode(mode)
	h.log.Info("mode switched", "from", currentMode.String(), "to", mode.String())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": mode.String()})
}
