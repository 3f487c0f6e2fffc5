// Package ratelimit provides per-client admission control for the HTTP
// surface.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter admits or rejects requests per client key using token
// buckets. Each key gets its own limiter sized so that at most Requests
// requests pass per Window; a burst up to the full window budget is
// allowed. Admission is non-blocking and O(1) per key.
type ClientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	requests int
	window   time.Duration
	idleTTL  time.Duration

	// now is swappable for tests.
	now func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Snapshot reports the limiter state for one key, for response headers.
type Snapshot struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// NewClientLimiter creates a limiter admitting requests per window for
// each client key. Entries idle longer than idleTTL are reclaimed by
// Prune.
func NewClientLimiter(requests int, window, idleTTL time.Duration) *ClientLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ClientLimiter{
		clients:  make(map[string]*client),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		requests: requests,
		window:   window,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Allow reports whether a request from the given client key is admitted.
// It never blocks; a rejected request consumes no budget.
func (l *ClientLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Admit is Allow plus a state snapshot for response headers.
func (l *ClientLimiter) Admit(key string) (bool, Snapshot) {
	lim := l.get(key)
	allowed := lim.Allow()
	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, Snapshot{
		Limit:     l.requests,
		Remaining: remaining,
		Reset:     l.now().Add(l.window),
	}
}

func (l *ClientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = l.now()
	return c.limiter
}

// Prune drops entries not seen within the idle TTL and returns how many
// were removed.
func (l *ClientLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked client keys.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// StartJanitor prunes idle entries on the given interval until stop is
// closed.
func (l *ClientLimiter) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Prune()
			case <-stop:
				return
			}
		}
	}()
}
