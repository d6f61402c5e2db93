package mention

import (
	"context"
	"regexp"
	"strings"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// mentionToken matches user mentions such as "<@U123>" or "<@U123|name>".
var mentionToken = regexp.MustCompile(`<@[^>]+>\s*`)

// ContentAssembler turns a Slack mention into a multi-modal user message.
type ContentAssembler struct {
	fetcher *AttachmentFetcher
}

// NewContentAssembler creates a content assembler.
func NewContentAssembler(fetcher *AttachmentFetcher) *ContentAssembler {
	return &ContentAssembler{fetcher: fetcher}
}

// StripMentions removes mention tokens and surrounding whitespace.
func StripMentions(text string) string {
	return strings.TrimSpace(mentionToken.ReplaceAllString(text, ""))
}

// Assemble builds the message: the cleaned text first, then one part per
// supported attachment in delivery order. Text files become text parts,
// everything else binary. A failed download aborts the whole message.
func (a *ContentAssembler) Assemble(ctx context.Context, event *entity.InboundEvent) (*entity.Content, error) {
	var parts []entity.Part

	if text := StripMentions(event.Text); text != "" {
		parts = append(parts, entity.TextPart(text))
	}

	for _, att := range event.Attachments {
		data, skip, err := a.fetcher.Fetch(ctx, att)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}

		if att.IsTextual() {
			parts = append(parts, entity.TextPart(string(data)))
		} else {
			parts = append(parts, entity.BinaryPart(data, att.MimeType))
		}
	}

	return entity.NewUserContent(parts...), nil
}
