package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = 5 * time.Minute

type bucket struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. They are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore starts a store whose expired buckets are swept every
// cleanupInterval. Zero selects five minutes. Call Stop to end the sweeper.
func NewMemoryStore(cleanupInterval time.Duration, opts ...MemoryOption) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buckets[key]
	if b == nil || now.After(b.resetAt) {
		b = &bucket{count: 0, resetAt: now.Add(window)}
		s.buckets[key] = b
	}
	b.count++
	return b.count, b.resetAt.Sub(now), nil
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.buckets {
		if now.After(b.resetAt) {
			delete(s.buckets, key)
		}
	}
}

// Len reports how many buckets are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}
