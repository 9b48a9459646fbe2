package model

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	if got := ParseRetryAfter("120"); got != 120*time.Second {
		t.Errorf("expected 120s, got %v", got)
	}
	if got := ParseRetryAfter(""); got != 0 {
		t.Errorf("expected 0 for empty, got %v", got)
	}
	if got := ParseRetryAfter("-5"); got != 0 {
		t.Errorf("expected 0 for negative, got %v", got)
	}
	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	if got := ParseRetryAfter(future); got <= 0 || got > 90*time.Second {
		t.Errorf("expected positive duration up to 90s, got %v", got)
	}
	if got := ParseRetryAfter("soon"); got != 0 {
		t.Errorf("expected 0 for garbage, got %v", got)
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("lever fetch for acme: unexpected status 503")
	err := fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 503, Err: inner})
	if got := err.Error(); got != "wrapped: HTTP 503: lever fetch for acme: unexpected status 503" {
		t.Errorf("unexpected message %q", got)
	}
}
