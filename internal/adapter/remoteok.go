package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

const remoteOKBaseURL = "https://remoteok.com/api"

// remoteOKJob represents a single posting in the RemoteOK API response.
type remoteOKJob struct {
	ID          json.Number `json:"id"`
	Legal       string      `json:"legal"`
	Date        string      `json:"date"`
	Company     string      `json:"company"`
	Position    string      `json:"position"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	SalaryMin   float64     `json:"salary_min"`
	SalaryMax   float64     `json:"salary_max"`
	URL         string      `json:"url"`
	ApplyURL    string      `json:"apply_url"`
}

// RemoteOKAdapter fetches postings from the RemoteOK public API. Every posting
// on the board is remote.
type RemoteOKAdapter struct {
	tag    string
	client *http.Client
	logger *slog.Logger
}

// NewRemoteOKAdapter creates an adapter for one RemoteOK tag. An empty tag
// fetches the whole board.
func NewRemoteOKAdapter(tag string, client *http.Client, logger *slog.Logger) *RemoteOKAdapter {
	return &RemoteOKAdapter{
		tag:    tag,
		client: client,
		logger: logger,
	}
}

// FetchJobs retrieves postings for the tag and maps them into the canonical Job model.
func (a *RemoteOKAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	endpoint := remoteOKBaseURL
	if a.tag != "" {
		endpoint += "?tag=" + url.QueryEscape(a.tag)
	}

	// RemoteOK rejects requests without an Accept header.
	header := http.Header{"Accept": []string{"application/json"}}
	body, err := fetchBody(ctx, a.client, FamilyRemoteOK, a.label(), endpoint, header)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("remoteok fetch for %s: %w", a.label(), err)
	}

	rJobs := decodeEach[remoteOKJob](items, a.logger, FamilyRemoteOK, a.label())
	jobs := make([]model.Job, 0, len(rJobs))
	for _, rj := range rJobs {
		// The first element of the array is a legal notice, not a posting.
		if rj.Legal != "" || rj.Position == "" {
			continue
		}

		job := model.Job{
			Title:       rj.Position,
			Company:     rj.Company,
			Location:    rj.Location,
			Remote:      true,
			Tags:        rj.Tags,
			URL:         rj.URL,
			Source:      FamilyRemoteOK,
			PostedAt:    parseTime(rj.Date, time.RFC3339),
			Description: extractText(rj.Description),
		}
		if job.URL == "" {
			job.URL = rj.ApplyURL
		}
		if rj.SalaryMin > 0 || rj.SalaryMax > 0 {
			lo, hi := rj.SalaryMin, rj.SalaryMax
			if lo == 0 {
				lo = hi
			}
			if hi == 0 {
				hi = lo
			}
			job.SalaryMin = floatPtr(lo)
			job.SalaryMax = floatPtr(hi)
			job.Currency = "USD"
			job.Salary = fmt.Sprintf("$%.0f - $%.0f", *job.SalaryMin, *job.SalaryMax)
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (a *RemoteOKAdapter) label() string {
	if a.tag == "" {
		return "all"
	}
	return a.tag
}
