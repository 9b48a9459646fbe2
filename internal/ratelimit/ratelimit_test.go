package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	limiter := NewKeyedRateLimiter(100*time.Millisecond, nil)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentKeys_NoCrossBlocking(t *testing.T) {
	limiter := NewKeyedRateLimiter(200*time.Millisecond, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("greenhouse wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "lever"); err != nil {
		t.Fatalf("lever wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected lever wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ConcurrentCallersAreSpaced(t *testing.T) {
	limiter := NewKeyedRateLimiter(50*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Wait(ctx, "lever")
		}()
	}
	wg.Wait()

	// Slots at 0, 50, 100 and 150ms.
	if elapsed := time.Since(start); elapsed < 130*time.Millisecond {
		t.Errorf("expected concurrent callers to be spaced out, finished in %v", elapsed)
	}
}

func TestWait_Override(t *testing.T) {
	limiter := NewKeyedRateLimiter(5*time.Second, map[string]time.Duration{"rss": 0})
	ctx := context.Background()

	if got := limiter.Delay("rss"); got != 0 {
		t.Errorf("expected override delay 0, got %v", got)
	}
	if got := limiter.Delay("lever"); got != 5*time.Second {
		t.Errorf("expected default delay 5s, got %v", got)
	}

	start := time.Now()
	for range 3 {
		if err := limiter.Wait(ctx, "rss"); err != nil {
			t.Fatalf("rss wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected no wait with zero override, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewKeyedRateLimiter(5*time.Second, nil)

	// First call to seed the key.
	if err := limiter.Wait(context.Background(), "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "greenhouse"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingFetcher struct {
	called bool
}

func (f *recordingFetcher) FetchJobs(_ context.Context) ([]model.Job, error) {
	f.called = true
	return nil, nil
}

type recordingSender struct {
	sent []string
}

func (s *recordingSender) Send(_ context.Context, identifier, text string) error {
	s.sent = append(s.sent, identifier+":"+text)
	return nil
}

func TestRateLimitedFetcher_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewKeyedRateLimiter(100*time.Millisecond, nil)
	inner := &recordingFetcher{}
	fetcher := NewRateLimitedFetcher(inner, limiter, "greenhouse")
	ctx := context.Background()

	if _, err := fetcher.FetchJobs(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner fetcher was not called on first fetch")
	}
	inner.called = false

	start := time.Now()
	if _, err := fetcher.FetchJobs(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner fetcher was not called on second fetch")
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}

func TestRateLimitedSender_CancelledSkipsSend(t *testing.T) {
	limiter := NewKeyedRateLimiter(time.Second, nil)
	inner := &recordingSender{}
	sender := NewRateLimitedSender(inner, limiter, string(model.ChannelTelegram))

	if err := sender.Send(context.Background(), "42", "first"); err != nil {
		t.Fatalf("first send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.Send(ctx, "42", "second"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if len(inner.sent) != 1 || inner.sent[0] != "42:first" {
		t.Fatalf("expected only the first message delivered, got %v", inner.sent)
	}
}
