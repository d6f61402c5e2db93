package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

// DefaultMaxFileSize caps a single downloaded attachment.
const DefaultMaxFileSize = 20 << 20

var errFileTooLarge = errors.New("file exceeds size limit")

// FileFetcher downloads private Slack files with the bot token.
type FileFetcher struct {
	api     *slack.Client
	maxSize int
}

// NewFileFetcher creates a fetcher whose requests are bounded by timeout.
func NewFileFetcher(botToken string, timeout time.Duration, opts ClientOptions) *FileFetcher {
	opts.HTTPTimeout = timeout
	return &FileFetcher{
		api:     newAPI(botToken, opts),
		maxSize: DefaultMaxFileSize,
	}
}

// Fetch downloads url and returns its body. Non-2xx responses are errors.
func (f *FileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	buf := &limitedBuffer{max: f.maxSize}
	if err := f.api.GetFileContext(ctx, url, buf); err != nil {
		if errors.Is(err, errFileTooLarge) {
			return nil, fmt.Errorf("downloading file: %w (max %d bytes)", err, f.maxSize)
		}
		return nil, categorizeSlackError(err, "downloading file")
	}
	return buf.buf.Bytes(), nil
}

// limitedBuffer fails writes past max bytes. It deliberately does not expose
// ReadFrom so io.Copy goes through Write.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.buf.Len()+len(p) > b.max {
		return 0, errFileTooLarge
	}
	return b.buf.Write(p)
}
