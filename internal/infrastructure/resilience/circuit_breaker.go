// Package resilience guards calls to flaky upstreams (model backend, Slack).
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows all requests through.
	StateClosed State = iota
	// StateOpen rejects all requests.
	StateOpen
	// StateHalfOpen allows trial requests to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Option customizes a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithFailurePredicate decides which errors count against the breaker.
// By default every error except context cancellation counts.
func WithFailurePredicate(isFailure func(error) bool) Option {
	return func(cb *CircuitBreaker) {
		cb.isFailure = isFailure
	}
}

// WithHalfOpenSuccesses sets how many trial successes close the breaker.
func WithHalfOpenSuccesses(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.halfOpenSucc = n
		}
	}
}

// WithStateChangeHook is called, outside the lock, on every transition.
func WithStateChangeHook(fn func(name string, from, to State)) Option {
	return func(cb *CircuitBreaker) {
		cb.onStateChange = fn
	}
}

// CircuitBreaker stops calling an upstream after repeated failures and
// tries it again once the cooldown has elapsed.
type CircuitBreaker struct {
	name          string
	maxFailures   int
	timeout       time.Duration
	halfOpenSucc  int
	isFailure     func(error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu           sync.RWMutex
	state        State
	failures     int
	lastFailTime time.Time
	successCount int
}

// NewCircuitBreaker creates a breaker that opens after maxFailures consecutive
// failures and stays open for timeout.
func NewCircuitBreaker(name string, maxFailures int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		timeout:      timeout,
		halfOpenSucc: 2,
		isFailure:    defaultIsFailure,
		now:          time.Now,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Execute runs fn unless the breaker is open or ctx is already done.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(err)

	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	from := cb.state

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailTime) <= cb.timeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	from := cb.state

	switch {
	case err != nil && cb.isFailure(err):
		cb.failures++
		cb.lastFailTime = cb.now()

		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}

	case err != nil:
		// Not the upstream's fault; leave the counters alone.

	case cb.state == StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenSucc {
			cb.state = StateClosed
			cb.failures = 0
		}

	default:
		cb.failures = 0
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Failures returns the current failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
