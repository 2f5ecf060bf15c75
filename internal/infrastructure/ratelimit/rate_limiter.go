package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result describes one admission decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is how long until the caller may try again.
	Reset time.Duration
}

// Limiter admits at most a fixed number of requests per key and window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. It suits a
// single instance; use RedisLimiter when running several.
type MemoryLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	limit    int
	window   time.Duration
	every    rate.Limit
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	m.mu.Lock()
	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.every, m.limit)}
		m.visitors[key] = v
	}
	now := time.Now()
	v.lastSeen = now
	m.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	res := Result{Allowed: allowed, Limit: m.limit, Remaining: remaining}
	if !allowed {
		res.Reset = time.Duration(float64(time.Second) / float64(m.every))
	}
	return res, nil
}

// Cleanup forgets keys not seen for longer than idle.
func (m *MemoryLimiter) Cleanup(idle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(m.visitors, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup periodically until ctx is done.
func (m *MemoryLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup(2 * m.window)
			}
		}
	}()
}
