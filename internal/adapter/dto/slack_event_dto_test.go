package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mentionPayload = `{
  "token": "x",
  "team_id": "T1",
  "api_app_id": "A1",
  "type": "event_callback",
  "event_id": "Ev123",
  "event_time": 1700000000,
  "event": {
    "type": "app_mention",
    "user": "U1",
    "text": "<@UBOT> what is this?",
    "ts": "1700000000.000100",
    "channel": "C1",
    "event_ts": "1700000000.000100",
    "files": [
      {"id": "F1", "name": "cat.png", "mimetype": "image/png", "url_private": "https://files.slack.com/p/cat.png", "url_private_download": "https://files.slack.com/d/cat.png"},
      {"id": "F2", "name": "a.zip", "mimetype": "application/zip", "url_private_download": "https://files.slack.com/d/a.zip"}
    ]
  }
}`

func TestSlackEventEnvelope_AppMention(t *testing.T) {
	var env SlackEventEnvelope
	require.NoError(t, json.Unmarshal([]byte(mentionPayload), &env))

	assert.True(t, env.IsEventCallback())
	assert.True(t, env.IsAppMention())
	assert.False(t, env.IsURLVerification())

	m, err := env.AppMention()
	require.NoError(t, err)

	ev := env.ToInboundEvent(m)
	assert.Equal(t, "app_mention", ev.Type)
	assert.Equal(t, "T1", ev.TeamID)
	assert.Equal(t, "U1", ev.UserID)
	assert.Equal(t, "C1", ev.ChannelID)
	assert.Equal(t, "Ev123", ev.EventID)
	assert.Equal(t, "1700000000.000100", ev.ThreadKey())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ev.EventTime)

	require.Len(t, ev.Attachments, 2)
	assert.Equal(t, "https://files.slack.com/d/cat.png", ev.Attachments[0].URL)
	assert.Equal(t, "image/png", ev.Attachments[0].MimeType)
	assert.Equal(t, "application/zip", ev.Attachments[1].MimeType)
}

func TestSlackEventEnvelope_AgreesWithSlackevents(t *testing.T) {
	parsed, err := slackevents.ParseEvent(json.RawMessage(mentionPayload), slackevents.OptionNoVerifyToken())
	require.NoError(t, err)
	require.IsType(t, &slackevents.AppMentionEvent{}, parsed.InnerEvent.Data)

	var env SlackEventEnvelope
	require.NoError(t, json.Unmarshal([]byte(mentionPayload), &env))
	assert.Equal(t, parsed.Type, env.Type)
	assert.Equal(t, parsed.InnerEvent.Type, env.InnerType())
	assert.True(t, env.IsAppMention())

	// slackevents.AppMentionEvent has no files; the DTO keeps them.
	m, err := env.AppMention()
	require.NoError(t, err)
	assert.Len(t, m.Files, 2)
}

func TestSlackEventEnvelope_URLVerification(t *testing.T) {
	var env SlackEventEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"url_verification","challenge":"abc","token":"t"}`), &env))
	assert.True(t, env.IsURLVerification())
	assert.False(t, env.IsAppMention())
}

func TestSlackEventEnvelope_OtherEvents(t *testing.T) {
	var env SlackEventEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"event_callback","event":{"type":"reaction_added"}}`), &env))
	assert.Equal(t, "reaction_added", env.InnerType())
	assert.False(t, env.IsAppMention())

	empty := SlackEventEnvelope{Type: "event_callback"}
	assert.Equal(t, "", empty.InnerType())
}

func TestEventTimeFallsBackToTS(t *testing.T) {
	assert.Equal(t, time.Unix(1700000001, 0).UTC(), eventTime(0, "1700000001.000200"))
}
