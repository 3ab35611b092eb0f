package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(3, 1) // 3 capacity, 1 refill per second

	for i := 0; i < 3; i++ {
		if !limiter.Allow("user1") {
			t.Errorf("Request %d for user1 should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if limiter.Allow("user1") {
		t.Error("4th request for user1 should be denied")
	}

	// Different key should have separate bucket
	if !limiter.Allow("user2") {
		t.Error("First request for user2 should be allowed")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(5, 2) // 5 capacity, 2 refill per second

	for i := 0; i < 5; i++ {
		limiter.Allow("test")
	}

	if limiter.Allow("test") {
		t.Error("Request should be denied after consuming all tokens")
	}

	// Wait 1 second (should refill 2 tokens)
	time.Sleep(1100 * time.Millisecond)

	if !limiter.Allow("test") || !limiter.Allow("test") {
		t.Error("Should allow 2 requests after refill")
	}

	if limiter.Allow("test") {
		t.Error("3rd request should be denied")
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("user") {
		t.Error("First request should be allowed")
	}
	if limiter.Allow("user") {
		t.Error("Second request should be denied")
	}

	limiter.Reset("user")

	if !limiter.Allow("user") {
		t.Error("Request after reset should be allowed")
	}
}
