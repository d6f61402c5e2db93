package handler

import (
	"context"
	"encoding/json"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// SocketModeHandler routes acknowledged Socket Mode envelopes. The socket
// connection is already authenticated, so there is no signature check.
type SocketModeHandler struct {
	allowed WorkspaceFilter
	router  *EventRouter
	logger  logger.Logger
}

// NewSocketModeHandler creates a new Socket Mode handler.
func NewSocketModeHandler(allowed WorkspaceFilter, router *EventRouter, log logger.Logger) *SocketModeHandler {
	if allowed == nil {
		allowed = func(string) bool { return true }
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &SocketModeHandler{allowed: allowed, router: router, logger: log}
}

// HandleEnvelope handles an Events API payload.
func (h *SocketModeHandler) HandleEnvelope(ctx context.Context, payload json.RawMessage) {
	var env dto.SlackEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		h.logger.Warn("invalid socket mode payload", "error", err)
		return
	}

	if !h.allowed(env.TeamID) {
		h.logger.Warn("event from workspace not allowed", "team_id", env.TeamID)
		return
	}

	h.router.Route(ctx, "socket_mode", &env)
}
