package dto

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack/slackevents"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// SlackEventEnvelope is the outer Events API payload, shared by webhook
// requests and Socket Mode envelopes.
type SlackEventEnvelope struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    string          `json:"team_id"`
	APIAppID  string          `json:"api_app_id"`
	EventID   string          `json:"event_id"`
	EventTime int64           `json:"event_time"`
	Event     json.RawMessage `json:"event"`
}

// IsURLVerification reports whether this is the endpoint handshake.
func (e *SlackEventEnvelope) IsURLVerification() bool {
	return e.Type == string(slackevents.URLVerification) || e.Challenge != ""
}

// IsEventCallback reports whether the envelope wraps an inner event.
func (e *SlackEventEnvelope) IsEventCallback() bool {
	return e.Type == string(slackevents.CallbackEvent)
}

// InnerType returns the inner event type, or "" if it cannot be read.
func (e *SlackEventEnvelope) InnerType() string {
	if len(e.Event) == 0 {
		return ""
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(e.Event, &head); err != nil {
		return ""
	}
	return head.Type
}

// IsAppMention reports whether the inner event is an app_mention.
func (e *SlackEventEnvelope) IsAppMention() bool {
	return e.IsEventCallback() && e.InnerType() == string(slackevents.AppMention)
}

// AppMentionEventDTO is the inner app_mention event.
type AppMentionEventDTO struct {
	Type     string         `json:"type"`
	User     string         `json:"user"`
	Text     string         `json:"text"`
	TS       string         `json:"ts"`
	ThreadTS string         `json:"thread_ts"`
	Channel  string         `json:"channel"`
	Team     string         `json:"team"`
	EventTS  string         `json:"event_ts"`
	Files    []SlackFileDTO `json:"files"`
}

// SlackFileDTO is a file shared with a message.
type SlackFileDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Mimetype           string `json:"mimetype"`
	URLPrivate         string `json:"url_private"`
	URLPrivateDownload string `json:"url_private_download"`
}

// AppMention decodes the inner event.
func (e *SlackEventEnvelope) AppMention() (*AppMentionEventDTO, error) {
	var m AppMentionEventDTO
	if err := json.Unmarshal(e.Event, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ToInboundEvent converts the mention to a domain event.
func (e *SlackEventEnvelope) ToInboundEvent(m *AppMentionEventDTO) *entity.InboundEvent {
	teamID := e.TeamID
	if teamID == "" {
		teamID = m.Team
	}

	event := &entity.InboundEvent{
		Type:      m.Type,
		TeamID:    teamID,
		UserID:    m.User,
		ChannelID: m.Channel,
		Text:      m.Text,
		MessageID: m.TS,
		ThreadID:  m.ThreadTS,
		EventID:   e.EventID,
		EventTime: eventTime(e.EventTime, m.EventTS),
	}

	for _, f := range m.Files {
		event.Attachments = append(event.Attachments, entity.Attachment{
			URL:      f.URLPrivateDownload,
			MimeType: f.Mimetype,
			Name:     f.Name,
		})
	}
	return event
}

func eventTime(unix int64, ts string) time.Time {
	if unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	sec, _, _ := strings.Cut(ts, ".")
	if n, err := strconv.ParseInt(sec, 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0).UTC()
	}
	return time.Now().UTC()
}
