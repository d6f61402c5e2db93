package slack

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder_BuildReply(t *testing.T) {
	b := NewMessageBuilder()

	t.Run("short text is one section", func(t *testing.T) {
		blocks := b.BuildReply("hello *world*")
		require.Len(t, blocks, 1)

		section, ok := blocks[0].(*slack.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, slack.MarkdownType, section.Text.Type)
		assert.Equal(t, "hello *world*", section.Text.Text)
	})

	t.Run("long text splits on newlines", func(t *testing.T) {
		line := strings.Repeat("a", 1999)
		blocks := b.BuildReply(line + "\n" + line + "\n" + line)
		require.Len(t, blocks, 3)
		for _, blk := range blocks {
			assert.Equal(t, line, blk.(*slack.SectionBlock).Text.Text)
		}
	})

	t.Run("block count is capped", func(t *testing.T) {
		blocks := b.BuildReply(strings.Repeat("x", maxSectionText*(maxBlocks+5)))
		assert.Len(t, blocks, maxBlocks)
	})
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{" "}, splitText("", 10))
	assert.Equal(t, []string{"abc"}, splitText("abc", 10))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, splitText("abcdefghijk", 5))
	assert.Equal(t, []string{"ab", "cdef"}, splitText("ab\ncdef", 5))

	// Multi-byte runes are never cut in half.
	for _, chunk := range splitText(strings.Repeat("é", 10), 5) {
		assert.True(t, utf8.ValidString(chunk), chunk)
		assert.LessOrEqual(t, len(chunk), 5)
	}
}

func TestMessageBuilder_FallbackText(t *testing.T) {
	b := NewMessageBuilder()
	assert.Equal(t, "short", b.FallbackText("short"))

	long := strings.Repeat("한", maxFallbackText)
	out := b.FallbackText(long)
	assert.LessOrEqual(t, len(out), maxFallbackText)
	assert.True(t, utf8.ValidString(out))
}
