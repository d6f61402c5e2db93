package slack

import (
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"
)

const (
	// maxSectionText is Slack's limit for a section block's text.
	maxSectionText = 3000

	// maxBlocks is Slack's limit on blocks per message.
	maxBlocks = 50

	// maxFallbackText keeps the top-level text under Slack's truncation point.
	maxFallbackText = 40000
)

// MessageBuilder constructs Slack Block Kit messages for agent replies.
type MessageBuilder struct{}

// NewMessageBuilder creates a new message builder.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// BuildReply renders text as mrkdwn section blocks. Long replies are split on
// line boundaries where possible so that each section stays within limits.
func (b *MessageBuilder) BuildReply(text string) []slack.Block {
	chunks := splitText(text, maxSectionText)
	if len(chunks) > maxBlocks {
		chunks = chunks[:maxBlocks]
	}

	blocks := make([]slack.Block, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, chunk, false, false),
			nil, nil,
		))
	}
	return blocks
}

// FallbackText returns the notification text sent alongside the blocks.
func (b *MessageBuilder) FallbackText(text string) string {
	if len(text) <= maxFallbackText {
		return text
	}
	cut := maxFallbackText
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// splitText splits s into pieces of at most limit bytes, preferring newlines.
func splitText(s string, limit int) []string {
	if s == "" {
		return []string{" "}
	}

	var chunks []string
	for len(s) > limit {
		cut := strings.LastIndex(s[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimLeft(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}
