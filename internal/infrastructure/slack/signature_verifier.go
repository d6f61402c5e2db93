package slack

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// ErrInvalidSignature is returned for any request that fails verification.
var ErrInvalidSignature = errors.New("invalid slack signature")

// SignatureVerifier authenticates webhook deliveries with the app's signing secret.
// See https://api.slack.com/authentication/verifying-requests-from-slack
type SignatureVerifier struct {
	signingSecret string
}

// NewSignatureVerifier creates a new signature verifier.
func NewSignatureVerifier(signingSecret string) *SignatureVerifier {
	return &SignatureVerifier{
		signingSecret: signingSecret,
	}
}

// Verify checks the X-Slack-Signature and X-Slack-Request-Timestamp headers
// against the raw body. Stale timestamps are rejected to prevent replays.
func (v *SignatureVerifier) Verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, v.signingSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return nil
}
