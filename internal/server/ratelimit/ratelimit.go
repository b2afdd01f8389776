// Package ratelimit limits requests per client with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket allows capacity requests at once and refills at refillRate tokens per second.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64) *tokenBucket {
	now := time.Now()
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

// take consumes a token if one is available and reports the bucket state afterwards.
func (tb *tokenBucket) take() (allowed bool, remaining int, full time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens = min(tb.capacity, tb.tokens+now.Sub(tb.lastRefill).Seconds()*tb.refillRate)
	tb.lastRefill = now
	tb.lastUsed = now

	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}

	full = now
	if tb.tokens < tb.capacity && tb.refillRate > 0 {
		secs := (tb.capacity - tb.tokens) / tb.refillRate
		full = now.Add(time.Duration(secs * float64(time.Second)))
	}
	return allowed, int(tb.tokens), full
}

// nextToken returns how long until one token is available.
func (tb *tokenBucket) nextToken() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens >= 1 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1 - tb.tokens) / tb.refillRate * float64(time.Second))
}

func (tb *tokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages one token bucket per client.
type Limiter struct {
	config  *Config
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a rate limiter. A nil config means DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may fetch path now.
func (l *Limiter) Allow(clientID, path string) (bool, Info) {
	cfg := l.config
	switch {
	case !cfg.Enabled, cfg.Whitelist[clientID], cfg.exempt(path), cfg.Limit <= 0:
		return true, Info{Allowed: true}
	case cfg.Blacklist[clientID]:
		return false, Info{}
	}

	bucket := l.bucket(clientID)
	allowed, remaining, full := bucket.take()
	info := Info{
		Allowed:   allowed,
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetTime: full,
	}
	if !allowed {
		info.RetryAfter = bucket.nextToken()
	}
	return allowed, info
}

func (l *Limiter) bucket(clientID string) *tokenBucket {
	l.mu.RLock()
	b, ok := l.buckets[clientID]
	l.mu.RUnlock()
	if ok {
		return b
	}

	window := l.config.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := l.config.Burst
	if capacity <= 0 {
		capacity = l.config.Limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[clientID]; ok {
		return b
	}
	b = newTokenBucket(capacity, float64(l.config.Limit)/window.Seconds())
	l.buckets[clientID] = b
	return b
}

// Clients returns the number of clients with a live bucket.
func (l *Limiter) Clients() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.dropIdle(time.Now().Add(-l.config.IdleTTL))
		case <-l.stop:
			return
		}
	}
}

// dropIdle removes buckets unused since cutoff.
func (l *Limiter) dropIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
