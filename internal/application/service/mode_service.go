package service

import (
	"log/slog"
	"sync"

	"barflow/internal/domain/model"
)

// ModeService holds the data mode used by the next ingestion run.
type ModeService struct {
	currentMode model.DataMode
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewModeService(initial model.DataMode, logger *slog.Logger) *ModeService {
	return &ModeService{
		currentMode: initial,
		logger:      logger,
	}
}

func (s *ModeService) SwitchMode(mode model.DataMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentMode == mode {
		return
	}

	s.logger.Info("mode_service: mode updated", "old", s.currentMode.String(), "new", mode.String())
	s.currentMode = mode
}

func (s *ModeService) GetCurrentMode() model.DataMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentMode
}
