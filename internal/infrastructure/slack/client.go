package slack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	domainerrors "github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// ClientOptions configures the Web API client.
type ClientOptions struct {
	// APIURL overrides the Web API base URL (tests, proxies).
	APIURL string

	// HTTPTimeout bounds every Web API call, file downloads included.
	HTTPTimeout time.Duration

	Logger logger.Logger
}

// Client wraps the Slack Web API with the operations the bridge needs.
type Client struct {
	api            *slack.Client
	messageBuilder *MessageBuilder
}

// NewClient creates a new Slack client.
func NewClient(botToken string, opts ClientOptions) *Client {
	return &Client{
		api:            newAPI(botToken, opts),
		messageBuilder: NewMessageBuilder(),
	}
}

func newAPI(botToken string, opts ClientOptions) *slack.Client {
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	options := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: timeout}),
	}
	if opts.APIURL != "" {
		options = append(options, slack.OptionAPIURL(opts.APIURL))
	}
	if opts.Logger != nil {
		options = append(options, slack.OptionLog(NewLogAdapter(opts.Logger)))
	}
	return slack.New(botToken, options...)
}

// PostReply posts text as a thread reply under threadTS.
// The message carries a mrkdwn section block and the same text as fallback.
func (c *Client) PostReply(ctx context.Context, channelID, threadTS, text string) error {
	options := []slack.MsgOption{
		slack.MsgOptionBlocks(c.messageBuilder.BuildReply(text)...),
		slack.MsgOptionText(c.messageBuilder.FallbackText(text), false),
		slack.MsgOptionTS(threadTS),
	}

	_, _, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return categorizeSlackError(err, "posting thread reply")
	}

	return nil
}

// AuthTest verifies the bot token and returns the workspace and bot user IDs.
func (c *Client) AuthTest(ctx context.Context) (teamID, botUserID string, err error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", "", categorizeSlackError(err, "auth test")
	}
	return resp.TeamID, resp.UserID, nil
}

// Name returns the notifier identifier.
func (c *Client) Name() string {
	return "slack"
}

// API returns the underlying Slack API client.
func (c *Client) API() *slack.Client {
	return c.api
}

// categorizeSlackError wraps Slack API errors as transient or permanent domain errors.
func categorizeSlackError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for context errors first; url errors wrapping them also satisfy net.Error.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: context timeout", operation),
			err,
		)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: network error", operation),
			err,
		)
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: rate limited, retry after %s", operation, rateErr.RetryAfter),
			err,
		)
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		if statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests {
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: http %d", operation, statusErr.Code),
				err,
			)
		}
		return domainerrors.NewPermanentError(
			fmt.Sprintf("%s: http %d", operation, statusErr.Code),
			err,
		)
	}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		switch slackErr.Err {
		case "rate_limited", "ratelimited":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: rate limited", operation),
				err,
			)

		case "internal_error", "fatal_error", "service_unavailable", "request_timeout":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: slack server error", operation),
				err,
			)

		default:
			// invalid_auth, channel_not_found, not_in_channel, msg_too_long...
			return domainerrors.NewPermanentError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)
		}
	}

	return domainerrors.NewPermanentError(
		fmt.Sprintf("%s: %v", operation, err),
		err,
	)
}
