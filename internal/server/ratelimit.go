package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// signupLimiter keeps one token bucket per client IP. Buckets idle for
// longer than idleTTL are full again, so they are dropped on the next sweep.
type signupLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	reqPerMin int
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newSignupLimiter(reqPerMin, burst int) *signupLimiter {
	if reqPerMin <= 0 {
		reqPerMin = 10
	}
	if burst <= 0 {
		burst = 5
	}
	refill := time.Duration(burst) * time.Minute / time.Duration(reqPerMin)
	return &signupLimiter{
		limiters:  make(map[string]*limiterEntry),
		reqPerMin: reqPerMin,
		burst:     burst,
		idleTTL:   max(refill, time.Minute),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether ip may submit another signup now.
func (m *signupLimiter) Allow(ip string) bool {
	return m.getLimiter(ip).AllowN(m.now(), 1)
}

func (m *signupLimiter) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.idleTTL {
		m.sweep(now)
	}

	entry, exists := m.limiters[ip]
	if !exists {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.reqPerMin)), m.burst),
		}
		m.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep must be called with mu held.
func (m *signupLimiter) sweep(now time.Time) {
	for ip, entry := range m.limiters {
		if now.Sub(entry.lastSeen) >= m.idleTTL {
			delete(m.limiters, ip)
		}
	}
	m.lastSweep = now
}

func (m *signupLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
