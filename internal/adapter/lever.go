package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverSalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

// leverJob represents a single posting in the Lever API response.
type leverJob struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Categories       leverCategories   `json:"categories"`
	Tags             []string          `json:"tags"`
	CreatedAt        int64             `json:"createdAt"`
	WorkplaceType    string            `json:"workplaceType"`
	HostedURL        string            `json:"hostedUrl"`
	ApplyURL         string            `json:"applyUrl"`
	SalaryRange      *leverSalaryRange `json:"salaryRange"`
}

// LeverAdapter fetches postings from the Lever public postings API.
type LeverAdapter struct {
	companySlug string
	client      *http.Client
	logger      *slog.Logger
}

// NewLeverAdapter creates a new adapter for a Lever company slug.
func NewLeverAdapter(companySlug string, client *http.Client, logger *slog.Logger) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		client:      client,
		logger:      logger,
	}
}

// FetchJobs retrieves all postings for the company and maps them into the
// canonical Job model.
func (a *LeverAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)

	body, err := fetchBody(ctx, a.client, FamilyLever, a.companySlug, url, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.companySlug, err)
	}

	leverJobs := decodeEach[leverJob](items, a.logger, FamilyLever, a.companySlug)
	jobs := make([]model.Job, 0, len(leverJobs))
	for _, lj := range leverJobs {
		jobs = append(jobs, a.toJob(lj))
	}
	return jobs, nil
}

func (a *LeverAdapter) toJob(lj leverJob) model.Job {
	// Prefer allLocations if available, fallback to location.
	location := lj.Categories.Location
	if len(lj.Categories.AllLocations) > 0 {
		location = strings.Join(lj.Categories.AllLocations, ", ")
	}

	// createdAt is Unix milliseconds.
	var postedAt *time.Time
	if lj.CreatedAt > 0 {
		t := time.UnixMilli(lj.CreatedAt).UTC()
		postedAt = &t
	}

	description := lj.DescriptionPlain
	if description == "" {
		description = lj.Description
	}

	tags := append([]string{}, lj.Tags...)
	tags = append(tags, lj.Categories.Team, lj.Categories.Department)

	job := model.Job{
		Title:          lj.Text,
		Company:        a.companySlug,
		Location:       location,
		Remote:         isRemote(location, lj.Text) || strings.EqualFold(lj.WorkplaceType, "remote"),
		Tags:           tags,
		URL:            lj.HostedURL,
		Source:         FamilyLever,
		PostedAt:       postedAt,
		EmploymentType: lj.Categories.Commitment,
		Description:    extractText(description),
	}
	if job.URL == "" {
		job.URL = lj.ApplyURL
	}

	if sr := lj.SalaryRange; sr != nil && (sr.Min > 0 || sr.Max > 0) {
		job.SalaryMin = floatPtr(sr.Min)
		job.SalaryMax = floatPtr(sr.Max)
		job.Currency = strings.ToUpper(sr.Currency)
		job.Salary = strings.TrimSpace(fmt.Sprintf("%.0f-%.0f %s %s", sr.Min, sr.Max, job.Currency, sr.Interval))
	}
	return job
}
