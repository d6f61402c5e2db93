package mention

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// AttachmentFetcher downloads the attachments the backend can consume.
type AttachmentFetcher struct {
	downloader FileDownloader
	metrics    Metrics
	logger     logger.Logger
}

// NewAttachmentFetcher creates an attachment fetcher.
func NewAttachmentFetcher(downloader FileDownloader, metrics Metrics, log logger.Logger) *AttachmentFetcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &AttachmentFetcher{downloader: downloader, metrics: metrics, logger: log}
}

// Fetch returns the attachment body. Unsupported attachments are skipped
// without any network call. Download failures are returned as errors.
func (f *AttachmentFetcher) Fetch(ctx context.Context, a entity.Attachment) (data []byte, skip bool, err error) {
	if !a.IsSupported() {
		f.metrics.RecordAttachment(ctx, "skipped", a.MimeType)
		f.logger.Debug("skipping unsupported attachment", "name", a.Name, "mime_type", a.MimeType)
		return nil, true, nil
	}

	data, err = f.downloader.Fetch(ctx, a.URL)
	if err != nil {
		f.metrics.RecordAttachment(ctx, "failed", a.MimeType)
		return nil, false, fmt.Errorf("fetch attachment %q: %w", a.Name, err)
	}

	f.metrics.RecordAttachment(ctx, "fetched", a.MimeType)
	return data, false, nil
}
