package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// RootHandler answers liveness checks on GET /.
type RootHandler struct{}

// NewRootHandler creates a root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// ServeHTTP handles GET /
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// ReadinessChecker reports whether a dependency is usable.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// ReadyHandler aggregates readiness checks.
type ReadyHandler struct {
	mu       sync.RWMutex
	checkers map[string]ReadinessChecker
	timeout  time.Duration
}

// NewReadyHandler creates a readiness handler with no checks.
func NewReadyHandler() *ReadyHandler {
	return &ReadyHandler{
		checkers: make(map[string]ReadinessChecker),
		timeout:  2 * time.Second,
	}
}

// AddChecker registers a named check.
func (h *ReadyHandler) AddChecker(name string, c ReadinessChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = c
}

type checkResult struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// ServeHTTP handles GET /ready
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	checks := make(map[string]checkResult, len(names))
	for _, name := range names {
		res := checkResult{Ready: true}
		if err := h.checkers[name].Ping(ctx); err != nil {
			res = checkResult{Ready: false, Error: err.Error()}
			ready = false
		}
		checks[name] = res
	}
	h.mu.RUnlock()

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ready":  ready,
		"checks": checks,
	})
}
