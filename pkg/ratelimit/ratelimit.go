package ratelimit

import (
	"sync"
	"time"
)

// bucket is a single token bucket.
type bucket struct {
	mu         sync.Mutex
	capacity   int64
	tokens     int64
	refillRate int64 // tokens added per second
	lastRefill time.Time
}

func newBucket(capacity, refillRate int64) *bucket {
	return &bucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	tokensToAdd := int64(now.Sub(b.lastRefill).Seconds()) * b.refillRate
	if tokensToAdd > 0 {
		b.tokens += tokensToAdd
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Limiter manages token buckets for multiple keys (user IDs, IP addresses).
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	capacity   int64
	refillRate int64

	cleanupInterval time.Duration
}

// NewLimiter creates a keyed token bucket limiter.
func NewLimiter(capacity, refillRate int64) *Limiter {
	l := &Limiter{
		buckets:         make(map[string]*bucket),
		capacity:        capacity,
		refillRate:      refillRate,
		cleanupInterval: 10 * time.Minute,
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether a request from the given key may proceed,
// consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.getBucket(key).allow()
}

// Reset drops the bucket for a key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *Limiter) getBucket(key string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[key]
	l.mu.RUnlock()

	if exists {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists = l.buckets[key]; exists {
		return b
	}

	b = newBucket(l.capacity, l.refillRate)
	l.buckets[key] = b
	return b
}

// cleanupLoop removes idle full buckets so the map does not grow without bound.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, b := range l.buckets {
			b.mu.Lock()
			idle := b.tokens == b.capacity && now.Sub(b.lastRefill) > l.cleanupInterval
			b.mu.Unlock()
			if idle {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
