// ABOUTME: Retry utilities for embedding and completion API calls
// ABOUTME: Exponential backoff with jitter, shared by the LLM provider
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps the delay regardless of attempt count.
const maxBackoff = 30 * time.Second

// CalculateBackoff returns exponential backoff with jitter.
// Base delay is doubled each attempt, with random jitter up to 25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	if backoff <= 0 {
		return 0
	}
	// Jitter: -25% to +25%
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
