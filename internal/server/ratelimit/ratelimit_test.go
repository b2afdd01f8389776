package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take()
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, remaining)
		}
	}

	// 11th request should be denied (no tokens left)
	allowed, _, full := bucket.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if !full.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
	if wait := bucket.nextToken(); wait <= 0 || wait > time.Second {
		t.Errorf("Expected next token within a second, got %v", wait)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(2, 10.0) // 1 token per 100ms

	bucket.take()
	bucket.take()
	if allowed, _, _ := bucket.take(); allowed {
		t.Fatal("Expected empty bucket to deny")
	}

	time.Sleep(150 * time.Millisecond)

	if allowed, _, _ := bucket.take(); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, Limit: 10, Window: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/pkg/")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/mod.sh")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}

	// Other clients have their own bucket.
	if allowed, _ := limiter.Allow("127.0.0.2", "/mod.sh"); !allowed {
		t.Error("Expected another client to be allowed")
	}
	if limiter.Clients() != 2 {
		t.Errorf("Expected 2 clients, got %d", limiter.Clients())
	}
}

func TestLimiter_Lists(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:   true,
		Limit:     1,
		Window:    time.Minute,
		Whitelist: map[string]bool{"10.0.0.1": true},
		Blacklist: map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/"); !allowed {
			t.Error("Expected whitelisted client to be allowed")
		}
	}
	if allowed, _ := limiter.Allow("10.0.0.2", "/"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Exempt(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, Limit: 1, Window: time.Minute, Exempt: []string{"/health"}})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/health"); !allowed {
			t.Error("Expected health check to be unlimited")
		}
	}
	if limiter.Clients() != 0 {
		t.Errorf("Expected no buckets for exempt paths, got %d", limiter.Clients())
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, Limit: 1})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/"); !allowed {
			t.Error("Expected all requests to be allowed when rate limiting is disabled")
		}
	}
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, Limit: 10, Window: time.Minute, Burst: 5})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/"); !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/"); allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, Limit: 100, Window: time.Minute})
	defer limiter.Stop()

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		allowedCount int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_DropIdle(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, Limit: 10, Window: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/")
	}
	limiter.dropIdle(time.Now().Add(-time.Hour))
	if limiter.Clients() != 5 {
		t.Errorf("Expected recent buckets to survive, got %d", limiter.Clients())
	}

	limiter.dropIdle(time.Now().Add(time.Second))
	if limiter.Clients() != 0 {
		t.Errorf("Expected idle buckets to be dropped, got %d", limiter.Clients())
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != 600 {
		t.Errorf("Expected default limit 600, got %d", info.Limit)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvEnabled, "false")
	t.Setenv(EnvLimit, "42")
	t.Setenv(EnvWindow, "10s")
	t.Setenv(EnvBurst, "bogus")
	t.Setenv(EnvWhitelist, " 10.0.0.1, ,10.0.0.2")
	t.Setenv(EnvBlacklist, "")

	cfg := FromEnv(DefaultConfig())
	if cfg.Enabled {
		t.Error("Expected limiter to be disabled")
	}
	if cfg.Limit != 42 {
		t.Errorf("Expected limit 42, got %d", cfg.Limit)
	}
	if cfg.Window != 10*time.Second {
		t.Errorf("Expected window 10s, got %v", cfg.Window)
	}
	if cfg.Burst != 0 {
		t.Errorf("Expected unparseable burst to be ignored, got %d", cfg.Burst)
	}
	if len(cfg.Whitelist) != 2 || !cfg.Whitelist["10.0.0.2"] {
		t.Errorf("Unexpected whitelist %v", cfg.Whitelist)
	}
	if len(cfg.Blacklist) != 0 {
		t.Errorf("Expected empty blacklist, got %v", cfg.Blacklist)
	}
}
