package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient sends every request to srv regardless of the requested host.
func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

// jsonServer serves payload as JSON and records the last request URI.
func jsonServer(payload string, lastURI *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastURI != nil {
			*lastURI = r.URL.RequestURI()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}
