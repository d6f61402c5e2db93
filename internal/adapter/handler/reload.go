package handler

import (
	"errors"
	"net/http"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
)

// ReloadHandler handles configuration reload requests.
type ReloadHandler struct {
	configManager *config.ConfigManager
	logger        logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(cm *config.ConfigManager, log logger.Logger) *ReloadHandler {
	if log == nil {
		log = logger.Nop{}
	}
	return &ReloadHandler{
		configManager: cm,
		logger:        log,
	}
}

// ServeHTTP handles POST /-/reload requests.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := h.configManager.TryReload()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	case errors.Is(err, config.ErrRequiresRestart):
		// Reloadable keys were applied; the rest waits for a restart.
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "partially_reloaded",
			"detail": err.Error(),
		})
	default:
		h.logger.Error("manual reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "failed",
			"error":  err.Error(),
		})
	}
}
