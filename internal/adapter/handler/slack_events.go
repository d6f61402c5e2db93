package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
)

const (
	// slackRetryHeader is set on redeliveries of an event Slack considers unacknowledged.
	slackRetryHeader = "X-Slack-Retry-Num"

	maxEventBodySize = 1 << 20
)

// SignatureVerifier authenticates a webhook request body.
type SignatureVerifier interface {
	Verify(header http.Header, body []byte) error
}

// WorkspaceFilter reports whether events from teamID are accepted.
type WorkspaceFilter func(teamID string) bool

// SlackEventsHandler is the Events API webhook.
type SlackEventsHandler struct {
	verifier SignatureVerifier
	allowed  WorkspaceFilter
	router   *EventRouter
	metrics  *observability.Metrics
	logger   logger.Logger
}

// NewSlackEventsHandler creates a new Slack events handler.
func NewSlackEventsHandler(
	verifier SignatureVerifier,
	allowed WorkspaceFilter,
	router *EventRouter,
	metrics *observability.Metrics,
	log logger.Logger,
) *SlackEventsHandler {
	if allowed == nil {
		allowed = func(string) bool { return true }
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &SlackEventsHandler{
		verifier: verifier,
		allowed:  allowed,
		router:   router,
		metrics:  metrics,
		logger:   log,
	}
}

// ServeHTTP handles POST /slack/events.
//
// Checks run in a fixed order: retry header, JSON, URL verification
// challenge, workspace allow-list, signature. Mentions are acknowledged with
// 200 once dispatched; everything else verified is acknowledged too.
func (h *SlackEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	if r.Header.Get(slackRetryHeader) != "" {
		h.logger.Debug("ignoring slack retry",
			"retry_num", r.Header.Get(slackRetryHeader),
			"retry_reason", r.Header.Get("X-Slack-Retry-Reason"))
		h.metrics.RecordEventIgnored(ctx, "slack_retry")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ignored_slack_retry"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBodySize))
	if err != nil {
		h.logger.Warn("failed to read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	// The challenge is read on its own so that unexpected shapes in the
	// remaining envelope fields cannot block URL verification.
	var challenge struct {
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &challenge); err != nil {
		h.logger.Warn("invalid slack event payload", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	if challenge.Challenge != "" {
		writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge.Challenge})
		return
	}

	var env dto.SlackEventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.logger.Warn("invalid slack event payload", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}

	if !h.allowed(env.TeamID) {
		h.logger.Warn("event from workspace not allowed", "team_id", env.TeamID)
		h.metrics.RecordEventIgnored(ctx, "workspace_not_allowed")
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf("%s:workspace_not_allowed", env.TeamID),
		})
		return
	}

	if err := h.verifier.Verify(r.Header, body); err != nil {
		h.logger.Warn("invalid slack signature",
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.RecordEventIgnored(ctx, "invalid_signature")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_signature"})
		return
	}

	if h.router.Route(ctx, "webhook", &env) == RouteRejected {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
