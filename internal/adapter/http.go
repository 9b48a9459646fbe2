package adapter

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/amishk599/jobfeed/internal/model"
)

// maxBodyBytes caps how much of a single upstream response is read.
const maxBodyBytes = 16 << 20

// NewHTTPClient returns the client shared by all network connectors. Every
// request carries the timeout and user agent, and brotli or gzip bodies are
// decoded transparently.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &decodingTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}

// decodingTransport negotiates "br, gzip". Setting Accept-Encoding by hand turns
// off net/http's own gzip handling, so both encodings are decoded here.
type decodingTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "br, gzip")
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		resp.Body = readCloser{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("gzip response from %s: %w", req.URL.Host, err)
		}
		resp.Body = readCloser{Reader: zr, Closer: resp.Body}
	default:
		return resp, nil
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// fetchBody GETs url and returns the body of a 200 response. Non-200 statuses
// come back as *model.HTTPError so the retry layer can classify them.
func fetchBody(ctx context.Context, client *http.Client, source, identifier, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", source, identifier, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", source, identifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s fetch for %s: unexpected status %d", source, identifier, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: reading body: %w", source, identifier, err)
	}
	return body, nil
}
