package entity

import (
	"strings"
	"time"
)

// UnknownUserID is used when a Slack event carries no user.
const UnknownUserID = "unknown"

// Attachment describes a file shared alongside a Slack message.
type Attachment struct {
	// URL is the private download URL (url_private_download).
	URL string

	// MimeType is the file MIME type as reported by Slack.
	MimeType string

	// Name is the original file name, used for logging only.
	Name string
}

// supportedMimePrefixes lists the media families forwarded to the backend.
var supportedMimePrefixes = []string{"image/", "video/", "audio/", "text/"}

// IsSupported reports whether the attachment can be fetched and forwarded:
// it needs a download URL and a media type the backend accepts.
func (a Attachment) IsSupported() bool {
	return a.URL != "" && IsSupportedMimeType(a.MimeType)
}

// IsTextual reports whether the attachment body should be decoded as text.
func (a Attachment) IsTextual() bool {
	return strings.HasPrefix(a.MimeType, "text/")
}

// IsSupportedMimeType accepts image/*, video/*, audio/*, text/* and application/pdf.
func IsSupportedMimeType(mimeType string) bool {
	if mimeType == "application/pdf" {
		return true
	}
	for _, prefix := range supportedMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// InboundEvent represents one mention received from Slack's Events API.
// It is built per request from the wire payload and never persisted.
type InboundEvent struct {
	// Event type (e.g., "app_mention")
	Type string

	// Context
	TeamID    string
	UserID    string
	ChannelID string

	// Raw text, may start with a mention token like <@U123>.
	Text string

	// MessageID is the message timestamp (ts).
	MessageID string

	// ThreadID is the thread root timestamp (thread_ts), empty outside threads.
	ThreadID string

	// Attachments in the order Slack delivered them.
	Attachments []Attachment

	// Metadata
	EventID   string    // Envelope event_id (for deduplication)
	EventTime time.Time // When event occurred
}

// IsAppMention returns true if this is an app_mention event.
func (e *InboundEvent) IsAppMention() bool {
	return e.Type == "app_mention"
}

// IsInThread returns true if the event is part of a thread.
func (e *InboundEvent) IsInThread() bool {
	return e.ThreadID != ""
}

// ThreadKey returns the timestamp anchoring the conversation thread.
// Replies are posted under it and it doubles as the backend session ID.
func (e *InboundEvent) ThreadKey() string {
	if e.ThreadID != "" {
		return e.ThreadID
	}
	return e.MessageID
}

// User returns the sender, falling back to UnknownUserID.
func (e *InboundEvent) User() string {
	if e.UserID == "" {
		return UnknownUserID
	}
	return e.UserID
}
