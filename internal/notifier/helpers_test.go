package notifier

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timePtr(t time.Time) *time.Time { return &t }

func sampleJob(title, company string) model.Job {
	return model.Job{
		ID:             title + "|" + company,
		Company:        company,
		Title:          title,
		Location:       "Remote, US",
		Remote:         true,
		Country:        "United States",
		URL:            "https://example.com/apply",
		PostedAt:       timePtr(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
		Source:         "greenhouse",
		SeniorityLevel: "Mid",
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// redirectClient sends every request to srv while keeping the original path.
func redirectClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}
