package handler

import (
	"context"
	"errors"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
)

// Dispatcher hands a mention off for asynchronous handling.
type Dispatcher interface {
	Dispatch(event *entity.InboundEvent) error
}

// RouteResult describes what happened to an event callback.
type RouteResult int

const (
	RouteDispatched RouteResult = iota
	RouteDuplicate
	RouteIgnored
	RouteRejected
)

// EventRouter delivers verified event callbacks to the dispatcher, dropping
// duplicates by event_id. Both the webhook and Socket Mode use it.
type EventRouter struct {
	processed  repository.ProcessedEventRepository
	dispatcher Dispatcher
	metrics    *observability.Metrics
	logger     logger.Logger
}

// NewEventRouter creates an event router.
func NewEventRouter(
	processed repository.ProcessedEventRepository,
	dispatcher Dispatcher,
	metrics *observability.Metrics,
	log logger.Logger,
) *EventRouter {
	if log == nil {
		log = logger.Nop{}
	}
	return &EventRouter{
		processed:  processed,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     log,
	}
}

// Route handles one event callback received over ingress ("webhook" or "socket_mode").
func (r *EventRouter) Route(ctx context.Context, ingress string, env *dto.SlackEventEnvelope) RouteResult {
	innerType := env.InnerType()
	r.metrics.RecordEventReceived(ctx, ingress, innerType)

	if !env.IsAppMention() {
		r.logger.Debug("ignoring event", "type", env.Type, "inner_type", innerType)
		r.metrics.RecordEventIgnored(ctx, "unhandled_type")
		return RouteIgnored
	}

	mention, err := env.AppMention()
	if err != nil {
		r.logger.Warn("malformed app_mention event", "event_id", env.EventID, "error", err)
		r.metrics.RecordEventIgnored(ctx, "malformed")
		return RouteIgnored
	}
	event := env.ToInboundEvent(mention)

	recorded := false
	if event.EventID != "" && r.processed != nil {
		err := r.processed.MarkProcessed(ctx, entity.NewProcessedEvent(event.EventID, event.ThreadKey()))
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			r.logger.Info("dropping duplicate event delivery", "event_id", event.EventID)
			r.metrics.RecordEventIgnored(ctx, "duplicate")
			return RouteDuplicate
		case err != nil:
			// Dedup is best effort; a store outage must not drop mentions.
			r.logger.Warn("failed to record processed event", "event_id", event.EventID, "error", err)
		default:
			recorded = true
		}
	}

	if err := r.dispatcher.Dispatch(event); err != nil {
		r.logger.Error("failed to dispatch mention", "event_id", event.EventID, "error", err)
		r.metrics.RecordEventIgnored(ctx, "shutting_down")
		if recorded {
			// The event was never handled, so a later delivery is not a duplicate.
			if err := r.processed.Unmark(context.WithoutCancel(ctx), event.EventID); err != nil {
				r.logger.Warn("failed to forget rejected event", "event_id", event.EventID, "error", err)
			}
		}
		return RouteRejected
	}
	return RouteDispatched
}
