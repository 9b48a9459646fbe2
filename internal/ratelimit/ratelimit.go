package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

// KeyedRateLimiter enforces a minimum gap between calls sharing a key, such as
// a source family or a channel type. Keys do not block each other.
type KeyedRateLimiter struct {
	mu        sync.Mutex
	next      map[string]time.Time // key: earliest start of the next call
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewKeyedRateLimiter creates a limiter with minDelay for every key, except
// those listed in overrides.
func NewKeyedRateLimiter(minDelay time.Duration, overrides map[string]time.Duration) *KeyedRateLimiter {
	o := make(map[string]time.Duration, len(overrides))
	for k, v := range overrides {
		o[k] = v
	}
	return &KeyedRateLimiter{
		next:      make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: o,
	}
}

// Delay returns the gap enforced for key.
func (r *KeyedRateLimiter) Delay(key string) time.Duration {
	if d, ok := r.overrides[key]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until key's slot comes up. Concurrent callers on the same key
// are spaced out in arrival order. Returns an error if the context is
// cancelled while waiting.
func (r *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	now := time.Now()
	slot := r.next[key]
	if slot.Before(now) {
		slot = now
	}
	r.next[key] = slot.Add(r.Delay(key))
	r.mu.Unlock()

	remaining := time.Until(slot)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RateLimitedFetcher is a decorator that waits for its key's slot before
// delegating to the wrapped JobFetcher.
type RateLimitedFetcher struct {
	inner   model.JobFetcher
	limiter *KeyedRateLimiter
	key     string
}

// NewRateLimitedFetcher wraps a JobFetcher with keyed rate limiting.
// All fetchers hitting the same upstream should share one limiter and key.
func NewRateLimitedFetcher(inner model.JobFetcher, limiter *KeyedRateLimiter, key string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// FetchJobs waits for the rate limiter to allow a request, then delegates to
// the wrapped fetcher.
func (f *RateLimitedFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	if err := f.limiter.Wait(ctx, f.key); err != nil {
		return nil, err
	}
	return f.inner.FetchJobs(ctx)
}

// RateLimitedSender spaces out messages on one channel.
type RateLimitedSender struct {
	inner   model.Sender
	limiter *KeyedRateLimiter
	key     string
}

// NewRateLimitedSender wraps a Sender with keyed rate limiting.
func NewRateLimitedSender(inner model.Sender, limiter *KeyedRateLimiter, key string) *RateLimitedSender {
	return &RateLimitedSender{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Send waits for the channel's slot, then delegates to the wrapped sender.
func (s *RateLimitedSender) Send(ctx context.Context, identifier, text string) error {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return err
	}
	return s.inner.Send(ctx, identifier, text)
}
