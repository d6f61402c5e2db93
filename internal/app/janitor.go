package app

import (
	"context"
	"time"
)

const janitorInterval = time.Minute

// runJanitor periodically drops expired dedup records and idle sessions.
func (app *Application) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sweep(ctx, time.Now())
		}
	}
}

func (app *Application) sweep(ctx context.Context, now time.Time) {
	log := app.logger.Get()
	cfg := app.configManager.Get()

	start := time.Now()
	n, err := app.processedRepo.DeleteExpired(ctx, now.Add(-cfg.Slack.DedupTTL))
	app.telemetry.Metrics.RecordRepositoryOperation(ctx, "delete_expired", "processed_event", time.Since(start), err == nil)
	if err != nil {
		log.Warn("processed event cleanup failed", "error", err)
	} else if n > 0 {
		log.Debug("expired processed events removed", "count", n)
	}

	start = time.Now()
	n, err = app.sessionRepo.DeleteIdle(ctx, now.Add(-cfg.Agent.SessionTTL))
	app.telemetry.Metrics.RecordRepositoryOperation(ctx, "delete_idle", "session", time.Since(start), err == nil)
	if err != nil {
		log.Warn("idle session cleanup failed", "error", err)
	} else if n > 0 {
		log.Info("idle sessions removed", "count", n)
	}
}
