// Package ratelimit implements fixed-window request counting per client and
// scope. Counters live behind the Store interface so a single process can
// keep them in memory while several processes share them through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Scopes
const (
	ScopeGlobal = "global"
	ScopeLogin  = "login"
)

// Store increments the counter for key, starting a new window of the given
// length when none is open. It returns the post-increment count and the time
// left in the window. Each call must be atomic per key.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Result describes the state of one client's window after a request.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter enforces Max requests per Window for one scope.
type Limiter struct {
	store  Store
	scope  string
	max    int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(store Store, scope string, max int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		scope:  scope,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (l *Limiter) Scope() string {
	return l.scope
}

// Allow counts a request from identity and reports whether it fits in the
// current window.
func (l *Limiter) Allow(ctx context.Context, identity string) (Result, error) {
	count, ttl, err := l.store.Increment(ctx, l.scope+":"+identity, l.window)
	if err != nil {
		return Result{}, err
	}

	if ttl < 0 {
		ttl = 0
	}
	if ttl > l.window {
		ttl = l.window
	}

	remaining := int64(l.max) - count
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: int(remaining),
		ResetAt:   l.now().Add(ttl),
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
