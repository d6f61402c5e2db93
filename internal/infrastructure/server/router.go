package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/handler/middleware"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
)

// SlackEventsPath is where Slack delivers Events API callbacks.
const SlackEventsPath = "/slack/events"

// Handlers holds all HTTP handlers.
type Handlers struct {
	Root        *handler.RootHandler
	Health      *handler.HealthHandler
	Ready       *handler.ReadyHandler
	Metrics     *handler.MetricsHandler
	Reload      *handler.ReloadHandler
	SlackEvents *handler.SlackEventsHandler
}

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
}

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers, opts RouterOptions, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	routes := []string{"/"}

	mount := func(path string, h http.Handler) {
		mux.Handle(path, h)
		routes = append(routes, path)
	}

	// Health endpoints
	mux.Handle("/", handlers.Root)
	mount("/health", handlers.Health)
	mount("/ready", handlers.Ready)

	if handlers.Metrics != nil {
		mount("/metrics", handlers.Metrics)
	}
	if handlers.Reload != nil {
		mount("/-/reload", handlers.Reload)
	}

	// Absent in socket mode.
	if handlers.SlackEvents != nil {
		mount(SlackEventsPath, handlers.SlackEvents)
	}

	var h http.Handler = mux
	if opts.RequestTimeout > 0 {
		h = middleware.Timeout(opts.RequestTimeout, []string{SlackEventsPath}, logger)(h)
	}
	if opts.Metrics != nil {
		h = middleware.Observability(opts.Metrics, routes)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
