package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

// DefaultMaxDelay caps a single wait when Policy.MaxDelay is unset.
const DefaultMaxDelay = 30 * time.Second

// Policy is bounded exponential backoff with ±30% jitter. A Retry-After hint
// carried by a *model.HTTPError replaces the computed delay. Every wait is
// capped at MaxDelay.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first failure.
	MaxRetries int
	// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
	BaseDelay time.Duration
	// MaxDelay bounds one wait, Retry-After included. Zero means DefaultMaxDelay.
	MaxDelay time.Duration
}

// Do runs op until it succeeds, fails terminally, or the retries are spent.
// It stops as soon as ctx is done; a timeout inside op is not a reason to stop.
// Attributes in attrs are added to every retry log line.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, op func(context.Context) error, attrs ...any) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := p.backoffDelay(attempt, lastErr)
			logger.Warn("retrying after transient error", append([]any{
				"attempt", attempt,
				"max_retries", p.MaxRetries,
				"delay", delay,
				"error", lastErr,
			}, attrs...)...)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry cancelled: %w: %w", ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		err := op(ctx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return fmt.Errorf("retry cancelled: %w: %w", ctx.Err(), err)
		case !isRetryable(err) || attempt >= p.MaxRetries:
			return err
		}
		lastErr = err
	}
}

// backoffDelay computes the delay for a given attempt with ±30% jitter,
// clamped to the policy's maximum.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	ceiling := p.MaxDelay
	if ceiling <= 0 {
		ceiling = DefaultMaxDelay
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, ceiling)
	}

	// Exponential: baseDelay * 2^(attempt-1), stopping once past the ceiling.
	delay := p.BaseDelay
	for i := 1; i < attempt && delay < ceiling; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return min(time.Duration(float64(delay)+(rand.Float64()*2-1)*jitter), ceiling)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A request that timed out on its own deadline is transient. Whether the
	// caller gave up is decided from ctx in Do.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Rejected webhook URLs will never become valid.
	if errors.Is(err, model.ErrInvalidWebhook) || errors.Is(err, model.ErrUnknownChannel) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}

// RetryFetcher is a decorator that retries transient failures before
// delegating to the wrapped JobFetcher.
type RetryFetcher struct {
	inner  model.JobFetcher
	policy Policy
	source string
	logger *slog.Logger
}

// NewRetryFetcher wraps a JobFetcher with retry logic. source labels the log lines.
func NewRetryFetcher(inner model.JobFetcher, policy Policy, source string, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{
		inner:  inner,
		policy: policy,
		source: source,
		logger: logger,
	}
}

// FetchJobs attempts to fetch jobs, retrying on transient errors.
func (f *RetryFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	err := f.policy.Do(ctx, f.logger, func(ctx context.Context) error {
		var err error
		jobs, err = f.inner.FetchJobs(ctx)
		return err
	}, "source", f.source)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// RetrySender applies the same policy to a channel adapter.
type RetrySender struct {
	inner   model.Sender
	policy  Policy
	channel model.Channel
	logger  *slog.Logger
}

// NewRetrySender wraps a Sender with retry logic. A zero MaxRetries sends once.
func NewRetrySender(inner model.Sender, policy Policy, channel model.Channel, logger *slog.Logger) *RetrySender {
	return &RetrySender{
		inner:   inner,
		policy:  policy,
		channel: channel,
		logger:  logger,
	}
}

// Send delivers text to identifier, retrying on transient errors.
func (s *RetrySender) Send(ctx context.Context, identifier, text string) error {
	return s.policy.Do(ctx, s.logger, func(ctx context.Context) error {
		return s.inner.Send(ctx, identifier, text)
	}, "channel", string(s.channel))
}
