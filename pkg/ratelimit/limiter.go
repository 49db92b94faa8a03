// Package ratelimit paces requests against the followers endpoint, which
// allows a fixed number of calls per rolling window.
//
// The limiter never sleeps itself. Allow reports whether a request may
// proceed and WaitTime reports how long until the next slot opens, so the
// caller decides how to wait (and tests never block).
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow tracks request timestamps within a moving time window.
// When the server reports a hard limit, MarkLimited overrides the window
// accounting until the reported reset time passes.
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	limitedTil  time.Time
	now         func() time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a limiter allowing maxRequests per windowSize
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// SetNowFunc replaces the clock, for tests
func (sw *SlidingWindow) SetNowFunc(now func() time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.now = now
}

// Allow reports whether a request may proceed, recording it if so
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	if now.Before(sw.limitedTil) {
		return false
	}

	sw.dropExpired(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// WaitTime returns how long until the next request would be allowed.
// Zero means a request may proceed now.
func (sw *SlidingWindow) WaitTime() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	if now.Before(sw.limitedTil) {
		return sw.limitedTil.Sub(now)
	}

	sw.dropExpired(now)

	if len(sw.requests) < sw.maxRequests {
		return 0
	}

	// The oldest recorded request leaving the window opens the next slot
	return sw.requests[0].Add(sw.windowSize).Sub(now)
}

// MarkLimited records a server-reported rate limit lasting until reset.
// Subsequent Allow calls fail until the reset time passes.
func (sw *SlidingWindow) MarkLimited(reset time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if reset.After(sw.limitedTil) {
		sw.limitedTil = reset
	}
}

// Reset clears all limiter state
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
	sw.limitedTil = time.Time{}
}

// dropExpired removes requests that have left the window. Caller holds mu.
func (sw *SlidingWindow) dropExpired(now time.Time) {
	cutoff := now.Add(-sw.windowSize)
	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		sw.requests = sw.requests[i:]
	}
}
