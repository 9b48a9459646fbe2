package adapter

import (
	"encoding/json"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	remoteRegex  = regexp.MustCompile(`(?i)\bremote\b`)
)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	plain = html.UnescapeString(plain)
	return strings.Join(strings.Fields(plain), " ")
}

// isRemote reports whether any of the given fields mentions remote work.
func isRemote(fields ...string) bool {
	for _, f := range fields {
		if remoteRegex.MatchString(f) {
			return true
		}
	}
	return false
}

// parseTime tries each layout in turn and returns nil when none fits.
func parseTime(value string, layouts ...string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// decodeEach unmarshals every raw item into T, logging and skipping the ones
// that do not fit so a single bad posting cannot sink the batch.
func decodeEach[T any](items []json.RawMessage, logger *slog.Logger, source, identifier string) []T {
	out := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			logger.Warn("skipping malformed posting",
				"source", source,
				"identifier", identifier,
				"index", i,
				"error", err,
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }
