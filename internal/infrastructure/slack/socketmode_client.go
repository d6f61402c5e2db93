package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/resilience"
)

// EnvelopeHandler receives the payload of each acknowledged Events API envelope.
// The payload has the same shape as a webhook request body.
type EnvelopeHandler interface {
	HandleEnvelope(ctx context.Context, payload json.RawMessage)
}

// SocketModeClient wraps Slack's Socket Mode client with reconnection logic.
type SocketModeClient struct {
	client         *socketmode.Client
	slackAPI       *slack.Client
	logger         logger.Logger
	reconnectCfg   ReconnectionConfig
	circuitBreaker *resilience.CircuitBreaker
	handler        EnvelopeHandler

	connected     atomic.Bool
	teamID        string
	lastReconnect time.Time
}

// NewSocketModeClient creates a new Socket Mode client.
func NewSocketModeClient(botToken string, cfg config.SocketModeConfig, log logger.Logger) (*SocketModeClient, error) {
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("socket mode app token is required")
	}
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if log == nil {
		log = logger.Nop{}
	}

	adapter := NewLogAdapter(log)
	slackAPI := slack.New(
		botToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionLog(adapter),
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	socketClient := socketmode.New(
		slackAPI,
		socketmode.OptionDebug(cfg.Debug),
		socketmode.OptionLog(adapter),
	)

	reconnectCfg := DefaultReconnectionConfig()
	return &SocketModeClient{
		client:         socketClient,
		slackAPI:       slackAPI,
		logger:         log,
		reconnectCfg:   reconnectCfg,
		circuitBreaker: resilience.NewCircuitBreaker("slack-socket-mode", reconnectCfg.MaxFailures, reconnectCfg.BreakerCooldown),
	}, nil
}

// SetHandler sets the Events API envelope handler.
func (c *SocketModeClient) SetHandler(handler EnvelopeHandler) {
	c.handler = handler
}

// Connect verifies credentials with exponential backoff, then starts the event loop.
// It gives up once the circuit breaker opens.
func (c *SocketModeClient) Connect(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		err := c.circuitBreaker.Execute(ctx, func() error {
			return c.attemptConnection(ctx)
		})
		if err == nil {
			c.connected.Store(true)
			c.lastReconnect = time.Now()
			c.logger.Info("connected to Slack via Socket Mode",
				"team_id", c.teamID,
				"attempt", attempt+1)

			go c.runEventLoop(ctx)
			return nil
		}

		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("circuit breaker open, stopping reconnection attempts",
				"failures", c.circuitBreaker.Failures())
			return fmt.Errorf("socket mode connect: %w", err)
		}

		c.logger.Warn("failed to connect to Slack via Socket Mode",
			"error", err,
			"attempt", attempt+1)

		backoff := CalculateBackoff(c.reconnectCfg, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// attemptConnection validates the bot token with auth.test.
func (c *SocketModeClient) attemptConnection(ctx context.Context) error {
	authTest, err := c.slackAPI.AuthTestContext(ctx)
	if err != nil {
		return categorizeSlackError(err, "auth test")
	}

	c.teamID = authTest.TeamID
	c.logger.Debug("auth test passed",
		"team_id", authTest.TeamID,
		"user_id", authTest.UserID)

	return nil
}

// runEventLoop processes events from Socket Mode.
func (c *SocketModeClient) runEventLoop(ctx context.Context) {
	c.logger.Info("starting Socket Mode event loop")

	for {
		select {
		case <-ctx.Done():
			c.connected.Store(false)
			return

		case evt, ok := <-c.client.Events:
			if !ok {
				c.connected.Store(false)
				return
			}
			c.handleSocketModeEvent(ctx, evt)
		}
	}
}

// handleSocketModeEvent acks Events API envelopes and forwards their payload.
func (c *SocketModeClient) handleSocketModeEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		c.logger.Info("connecting to Slack")

	case socketmode.EventTypeConnectionError:
		c.connected.Store(false)
		c.logger.Error("socket mode connection error", "error", evt.Data)

	case socketmode.EventTypeConnected:
		c.connected.Store(true)
		c.logger.Info("socket mode connected")

	case socketmode.EventTypeEventsAPI:
		if evt.Request == nil {
			c.logger.Warn("events API event without envelope")
			return
		}

		// Slack redelivers envelopes not acked within 3 seconds.
		c.client.Ack(*evt.Request)

		if c.handler != nil {
			c.handler.HandleEnvelope(ctx, evt.Request.Payload)
		}

	case socketmode.EventTypeSlashCommand, socketmode.EventTypeInteractive:
		if evt.Request != nil {
			c.client.Ack(*evt.Request)
		}
		c.logger.Debug("ignoring unsupported socket mode request", "type", evt.Type)

	default:
		c.logger.Debug("unhandled socket mode event", "type", evt.Type)
	}
}

// Run connects and then blocks serving the websocket until ctx is done.
func (c *SocketModeClient) Run(ctx context.Context) error {
	c.logger.Info("starting Socket Mode client")

	if err := c.Connect(ctx); err != nil {
		return err
	}

	return c.client.RunContext(ctx)
}

// IsConnected returns true if the client is currently connected.
func (c *SocketModeClient) IsConnected() bool {
	return c.connected.Load()
}

// LastReconnect returns the timestamp of the last successful connection.
func (c *SocketModeClient) LastReconnect() time.Time {
	return c.lastReconnect
}
