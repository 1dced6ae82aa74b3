package domain

import (
	"sync"
	"time"
)

// Limiter gates audio warnings to at most one per cooldown window.
// A disabled limiter refuses everything.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	enabled  bool
	last     time.Time
}

func NewLimiter(cooldown time.Duration, enabled bool) *Limiter {
	return &Limiter{cooldown: cooldown, enabled: enabled}
}

// Allow reports whether a warning may play now, and if so starts a new
// cooldown window.
func (l *Limiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return false
	}
	if !l.last.IsZero() && now.Sub(l.last) < l.cooldown {
		return false
	}
	l.last = now
	return true
}
