package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher calls a function on each invocation, tracking call count.
type mockFetcher struct {
	calls int
	fn    func(attempt int) ([]model.Job, error)
}

func (m *mockFetcher) FetchJobs(_ context.Context) ([]model.Job, error) {
	m.calls++
	return m.fn(m.calls)
}

// mockSender fails with errs in order, then succeeds.
type mockSender struct {
	calls int
	errs  []error
}

func (m *mockSender) Send(_ context.Context, _, _ string) error {
	m.calls++
	if m.calls <= len(m.errs) {
		return m.errs[m.calls-1]
	}
	return nil
}

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, BaseDelay: 10 * time.Millisecond}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	jobs := []model.Job{{ID: "1", Title: "Engineer"}}
	mock := &mockFetcher{fn: func(_ int) ([]model.Job, error) {
		return jobs, nil
	}}

	rf := NewRetryFetcher(mock, fastPolicy(2), "lever:acme", discardLogger())
	got, err := rf.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected jobs: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.Job, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []model.Job{{ID: "1"}}, nil
	}}

	rf := NewRetryFetcher(mock, fastPolicy(2), "lever:acme", discardLogger())
	got, err := rf.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 job, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_RetriesNetworkErrors(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.Job, error) {
		if attempt < 3 {
			return nil, fmt.Errorf("lever fetch for acme: %w", errors.New("connection reset by peer"))
		}
		return nil, nil
	}}

	rf := NewRetryFetcher(mock, fastPolicy(2), "lever:acme", discardLogger())
	if _, err := rf.FetchJobs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Job, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rf := NewRetryFetcher(mock, fastPolicy(2), "lever:gone", discardLogger())
	_, err := rf.FetchJobs(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Job, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rf := NewRetryFetcher(mock, fastPolicy(2), "lever:acme", discardLogger())
	if _, err := rf.FetchJobs(context.Background()); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Job, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	rf := NewRetryFetcher(mock, Policy{MaxRetries: 2, BaseDelay: time.Second}, "lever:acme", discardLogger())
	_, err := rf.FetchJobs(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestBackoffDelay_HonoursRetryAfter(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Minute}
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 42 * time.Second}
	if got := p.backoffDelay(1, err); got != 42*time.Second {
		t.Errorf("expected Retry-After to win, got %v", got)
	}

	for attempt, base := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second} {
		got := p.backoffDelay(attempt, errors.New("x"))
		lo, hi := time.Duration(float64(base)*0.7), time.Duration(float64(base)*1.3)
		if got < lo || got > hi {
			t.Errorf("attempt %d: delay %v outside [%v, %v]", attempt, got, lo, hi)
		}
	}
}

func TestRetrySender(t *testing.T) {
	t.Run("zero retries sends once", func(t *testing.T) {
		m := &mockSender{errs: []error{&model.HTTPError{StatusCode: 502}}}
		s := NewRetrySender(m, fastPolicy(0), model.ChannelDiscord, discardLogger())
		if err := s.Send(context.Background(), "hook", "hi"); err == nil {
			t.Fatal("expected error")
		}
		if m.calls != 1 {
			t.Fatalf("expected 1 call, got %d", m.calls)
		}
	})

	t.Run("retries 429", func(t *testing.T) {
		m := &mockSender{errs: []error{&model.HTTPError{StatusCode: 429, RetryAfter: time.Millisecond}}}
		s := NewRetrySender(m, fastPolicy(1), model.ChannelTelegram, discardLogger())
		if err := s.Send(context.Background(), "123", "hi"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.calls != 2 {
			t.Fatalf("expected 2 calls, got %d", m.calls)
		}
	})

	t.Run("never retries invalid webhook", func(t *testing.T) {
		m := &mockSender{errs: []error{fmt.Errorf("discord send: %w", model.ErrInvalidWebhook)}}
		s := NewRetrySender(m, fastPolicy(3), model.ChannelDiscord, discardLogger())
		if err := s.Send(context.Background(), "http://evil", "hi"); !errors.Is(err, model.ErrInvalidWebhook) {
			t.Fatalf("expected ErrInvalidWebhook, got %v", err)
		}
		if m.calls != 1 {
			t.Fatalf("expected 1 call, got %d", m.calls)
		}
	})
}

func TestBackoffDelay_ClampsToMaxDelay(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	hour := &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}
	if got := p.backoffDelay(1, hour); got != 5*time.Second {
		t.Errorf("expected Retry-After clamped to 5s, got %v", got)
	}
	if got := p.backoffDelay(10, errors.New("x")); got > 5*time.Second {
		t.Errorf("expected exponential delay clamped to 5s, got %v", got)
	}

	unset := Policy{MaxRetries: 1, BaseDelay: time.Second}
	if got := unset.backoffDelay(1, hour); got != DefaultMaxDelay {
		t.Errorf("expected DefaultMaxDelay when unset, got %v", got)
	}
}

func TestRetry_LongRetryAfterDoesNotBlock(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.Job, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}
		}
		return []model.Job{{ID: "1"}}, nil
	}}

	p := Policy{MaxRetries: 1, BaseDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := NewRetryFetcher(mock, p, "remoteok:all", discardLogger()).FetchJobs(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected the capped wait, took %v", elapsed)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

// httpFetcher GETs url once per FetchJobs call.
type httpFetcher struct {
	client *http.Client
	url    string
}

func (f httpFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{StatusCode: resp.StatusCode}
	}
	return []model.Job{{ID: "ok"}}, nil
}

func TestRetry_RetriesClientTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			// Hold the response past the client timeout.
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := httpFetcher{client: &http.Client{Timeout: 100 * time.Millisecond}, url: srv.URL}
	rf := NewRetryFetcher(f, fastPolicy(2), "lever:slow", discardLogger())

	jobs, err := rf.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("expected timeouts to be retried, got %v", err)
	}
	if len(jobs) != 1 || hits.Load() != 3 {
		t.Errorf("expected success on the third request, got %d requests", hits.Load())
	}
}

func TestRetry_CallerDeadlineStops(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Job, error) {
		return nil, fmt.Errorf("fetch: %w", context.DeadlineExceeded)
	}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewRetryFetcher(mock, fastPolicy(3), "lever:acme", discardLogger()).FetchJobs(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected no retry once the caller's deadline passed, got %d calls", mock.calls)
	}
}
