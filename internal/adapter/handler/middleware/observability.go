package middleware

import (
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
)

// Observability records HTTP metrics for requests. Paths outside routes are
// reported as "other" to bound label cardinality.
func Observability(metrics *observability.Metrics, routes []string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}

	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.HTTPRequestsActive.Add(r.Context(), 1)
			defer metrics.HTTPRequestsActive.Add(r.Context(), -1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if !known[path] {
				path = "other"
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, path, rw.statusCode, time.Since(start))
		})
	}
}
