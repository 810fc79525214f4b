package slack

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedUsers caps the number of tracked per-user limiters to
// prevent memory exhaustion from rotating sender IDs.
const maxTrackedUsers = 4096

// CommandLimiter enforces a per-user command rate. Safe for concurrent
// use.
type CommandLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewCommandLimiter creates a limiter allowing rpm commands per minute
// per user. rpm <= 0 disables limiting.
func NewCommandLimiter(rpm int) *CommandLimiter {
	if rpm <= 0 {
		return &CommandLimiter{}
	}
	return &CommandLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(rpm) / 60.0),
		burst:    5,
	}
}

// Allow reports whether the user may run another command now.
func (l *CommandLimiter) Allow(userID string) bool {
	if l.limiters == nil {
		return true
	}

	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		// Hard eviction at the cap; map iteration order gives a cheap
		// random victim.
		if len(l.limiters) >= maxTrackedUsers {
			for k := range l.limiters {
				delete(l.limiters, k)
				break
			}
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}
