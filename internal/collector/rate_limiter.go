package collector

import (
	"sync"
	"time"

	"github.com/google/go-github/v55/github"
)

// RateTracker remembers the last rate limit GitHub reported.
// It never delays requests; the numbers are only attached to failure logs.
type RateTracker interface {
	Snapshot() (remaining int, resetTime time.Time, known bool)
	Update(resp *github.Response)
}

type githubRateTracker struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	known     bool
}

// NewRateTracker creates a new rate tracker
func NewRateTracker() RateTracker {
	return &githubRateTracker{}
}

// Snapshot returns the last recorded rate limit status
func (r *githubRateTracker) Snapshot() (int, time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime, r.known
}

// Update records the rate limit from API response headers
func (r *githubRateTracker) Update(resp *github.Response) {
	// go-github leaves Rate zeroed when the headers are missing
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = resp.Rate.Remaining
	r.resetTime = resp.Rate.Reset.Time
	r.known = true
}
