package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedHeader(secret string, ts time.Time, body []byte) http.Header {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)

	h := http.Header{}
	h.Set("X-Slack-Request-Timestamp", timestamp)
	h.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return h
}

func TestSignatureVerifier_Verify(t *testing.T) {
	const secret = "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback","event_id":"Ev1"}`)
	v := NewSignatureVerifier(secret)

	t.Run("valid signature", func(t *testing.T) {
		require.NoError(t, v.Verify(signedHeader(secret, time.Now(), body), body))
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signedHeader(secret, time.Now(), body)
		err := v.Verify(h, []byte(`{"type":"event_callback","event_id":"Ev2"}`))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		h := signedHeader("other-secret", time.Now(), body)
		assert.ErrorIs(t, v.Verify(h, body), ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signedHeader(secret, time.Now().Add(-10*time.Minute), body)
		assert.ErrorIs(t, v.Verify(h, body), ErrInvalidSignature)
	})

	t.Run("missing headers", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(http.Header{}, body), ErrInvalidSignature)
	})
}
