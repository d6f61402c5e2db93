package slack

import (
	"math"
	"time"
)

// ReconnectionConfig holds configuration for reconnection logic.
type ReconnectionConfig struct {
	InitialBackoff    time.Duration // Initial backoff delay (default: 500ms)
	MaxBackoff        time.Duration // Maximum backoff delay (default: 60s)
	BackoffMultiplier float64       // Backoff multiplier (default: 1.5)
	MaxFailures       int           // Consecutive failures before the breaker opens (default: 5)
	BreakerCooldown   time.Duration // How long the breaker stays open (default: 5m)
}

// DefaultReconnectionConfig returns default reconnection configuration.
func DefaultReconnectionConfig() ReconnectionConfig {
	return ReconnectionConfig{
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 1.5,
		MaxFailures:       5,
		BreakerCooldown:   5 * time.Minute,
	}
}

// CalculateBackoff returns the exponential backoff for a zero-based attempt,
// capped at MaxBackoff.
func CalculateBackoff(cfg ReconnectionConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attempt))

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}
