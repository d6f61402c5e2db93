package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInboundEvent_ThreadKey(t *testing.T) {
	top := &InboundEvent{MessageID: "1700000000.000100"}
	assert.Equal(t, "1700000000.000100", top.ThreadKey())
	assert.False(t, top.IsInThread())

	reply := &InboundEvent{MessageID: "1700000000.000200", ThreadID: "1700000000.000100"}
	assert.Equal(t, "1700000000.000100", reply.ThreadKey())
	assert.True(t, reply.IsInThread())
}

func TestInboundEvent_User(t *testing.T) {
	assert.Equal(t, UnknownUserID, (&InboundEvent{}).User())
	assert.Equal(t, "U1", (&InboundEvent{UserID: "U1"}).User())
}

func TestIsSupportedMimeType(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"image/png", true},
		{"video/mp4", true},
		{"audio/mpeg", true},
		{"text/plain", true},
		{"application/pdf", true},
		{"application/zip", false},
		{"application/pdf; charset=binary", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupportedMimeType(tt.mime))
		})
	}
}

func TestAttachment_IsSupported(t *testing.T) {
	assert.False(t, Attachment{MimeType: "image/png"}.IsSupported(), "missing URL")
	assert.False(t, Attachment{URL: "https://files.slack.com/x", MimeType: "application/zip"}.IsSupported())
	assert.True(t, Attachment{URL: "https://files.slack.com/x", MimeType: "text/csv"}.IsSupported())
}

func TestNewUserContent_Placeholder(t *testing.T) {
	c := NewUserContent()
	assert.Equal(t, RoleUser, c.Role)
	assert.Len(t, c.Parts, 1)
	assert.Equal(t, NoContentPlaceholder, c.FirstText())
}

func TestContent_FirstTextSkipsNonText(t *testing.T) {
	c := &Content{Parts: []Part{
		BinaryPart([]byte{1}, "image/png"),
		TextPart("caption"),
		TextPart("second"),
	}}
	assert.Equal(t, "caption", c.FirstText())

	var nilContent *Content
	assert.Equal(t, "", nilContent.FirstText())
}

func TestRunResult(t *testing.T) {
	assert.Equal(t, "Here you go", Ok("  Here you go\n").ReplyText())
	assert.Equal(t, NoResponsePlaceholder, Ok("   ").ReplyText())

	failed := Err(errors.New("quota exceeded"))
	assert.True(t, failed.IsErr())
	assert.Equal(t, "quota exceeded", failed.ErrorMessage())
	assert.Equal(t, "Error from Agent: quota exceeded", failed.ReplyText())

	assert.Equal(t, "Error from Agent: unknown error", Err(nil).ReplyText())
}
