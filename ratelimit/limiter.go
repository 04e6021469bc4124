// Package ratelimit throttles API requests per client address.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const DefaultMessage = "Too many requests from this IP, please try again later."

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(key string) bool
}

// Clock lets tests control time.
type Clock func() time.Time

// KeyedLimiter admits at most quota requests per key within any window-long
// span. Each key keeps the times of its admitted requests, oldest first.
type KeyedLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	quota  int
	window time.Duration
	now    Clock
}

func New(quota int, window time.Duration, now Clock) *KeyedLimiter {
	if quota <= 0 {
		quota = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &KeyedLimiter{
		hits:   make(map[string][]time.Time),
		quota:  quota,
		window: window,
		now:    now,
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.prune(l.hits[key], now)
	if len(hits) >= l.quota {
		l.hits[key] = hits
		return false
	}
	l.hits[key] = append(hits, now)
	return true
}

// prune drops hits that have left the window ending at now.
func (l *KeyedLimiter) prune(hits []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= l.window {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}

// Sweep forgets keys with no request inside the current window.
func (l *KeyedLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, hits := range l.hits {
		if hits = l.prune(hits, now); len(hits) == 0 {
			delete(l.hits, key)
			removed++
			continue
		}
		l.hits[key] = hits
	}
	return removed
}

func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// Middleware answers 429 with a plain-text message once the client's quota
// for the window is spent.
func Middleware(l Limiter, message string) gin.HandlerFunc {
	if message == "" {
		message = DefaultMessage
	}
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.String(http.StatusTooManyRequests, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
