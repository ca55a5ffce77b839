package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// LoginThrottle keeps one token bucket per client address and evicts buckets
// that have been idle longer than idleAfter.
type LoginThrottle struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	buckets   map[string]*bucket
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginThrottle allows perMinute attempts per client. A non-positive value returns nil,
// which disables throttling.
func NewLoginThrottle(perMinute int, idleAfter time.Duration) *LoginThrottle {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	// Eviction must not happen before a bucket has refilled.
	if refill := interval * time.Duration(burst); idleAfter < refill {
		idleAfter = refill
	}
	return &LoginThrottle{
		limit:     rate.Every(interval),
		burst:     burst,
		idleAfter: idleAfter,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Allow reports whether the client may attempt another login.
func (t *LoginThrottle) Allow(key string) bool {
	t.mu.Lock()
	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[key] = b
	}
	b.lastSeen = now
	limiter := b.limiter
	t.mu.Unlock()
	return limiter.AllowN(now, 1)
}

// StartCleanup evicts idle buckets every interval until Stop is called. Run it in its own goroutine.
func (t *LoginThrottle) StartCleanup(interval time.Duration) {
	if t == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanup()
		case <-t.stop:
			return
		}
	}
}

// Stop ends the cleanup loop. Safe to call more than once.
func (t *LoginThrottle) Stop() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *LoginThrottle) cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	threshold := t.now().Add(-t.idleAfter)
	removed := 0
	for key, b := range t.buckets {
		if b.lastSeen.Before(threshold) {
			delete(t.buckets, key)
			removed++
		}
	}
	return removed
}

func (t *LoginThrottle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// Handler rejects callers that exceed their budget. A nil throttle lets everything through.
func (t *LoginThrottle) Handler() fiber.Handler {
	if t == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		if !t.Allow(c.IP()) {
			return apperrors.NewTooManyRequests()
		}
		return c.Next()
	}
}
