package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID             int64                `json:"id"`
	Title          string               `json:"title"`
	Location       greenhouseLocation   `json:"location"`
	AbsoluteURL    string               `json:"absolute_url"`
	UpdatedAt      string               `json:"updated_at"`
	FirstPublished string               `json:"first_published"`
	Content        string               `json:"content"`
	CompanyName    string               `json:"company_name"`
	Departments    []greenhouseNamed    `json:"departments"`
	Metadata       []greenhouseMetadata `json:"metadata"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseNamed struct {
	Name string `json:"name"`
}

// greenhouseMetadata holds board-defined custom fields. Value is untyped in the API.
type greenhouseMetadata struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	boardToken string
	client     *http.Client
	logger     *slog.Logger
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board.
func NewGreenhouseAdapter(boardToken string, client *http.Client, logger *slog.Logger) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken: boardToken,
		client:     client,
		logger:     logger,
	}
}

// FetchJobs retrieves all jobs, with content, from the Greenhouse board and
// maps them into the canonical Job model.
func (a *GreenhouseAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)

	body, err := fetchBody(ctx, a.client, FamilyGreenhouse, a.boardToken, url, nil)
	if err != nil {
		return nil, err
	}

	var ghResp greenhouseResponse
	if err := json.Unmarshal(body, &ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err)
	}

	ghJobs := decodeEach[greenhouseJob](ghResp.Jobs, a.logger, FamilyGreenhouse, a.boardToken)
	jobs := make([]model.Job, 0, len(ghJobs))
	for _, gj := range ghJobs {
		jobs = append(jobs, a.toJob(gj))
	}
	return jobs, nil
}

func (a *GreenhouseAdapter) toJob(gj greenhouseJob) model.Job {
	tags := make([]string, 0, len(gj.Departments))
	for _, d := range gj.Departments {
		tags = append(tags, d.Name)
	}

	job := model.Job{
		Title:       gj.Title,
		Company:     gj.CompanyName,
		Location:    gj.Location.Name,
		Remote:      isRemote(gj.Location.Name, gj.Title),
		Tags:        tags,
		URL:         gj.AbsoluteURL,
		Source:      FamilyGreenhouse,
		Description: extractText(gj.Content),
	}
	if job.Company == "" {
		job.Company = a.boardToken
	}

	// first_published is the real publish time; updated_at moves on every edit.
	job.PostedAt = parseTime(gj.FirstPublished, time.RFC3339)
	if job.PostedAt == nil {
		job.PostedAt = parseTime(gj.UpdatedAt, time.RFC3339)
	}

	for _, m := range gj.Metadata {
		s, ok := m.Value.(string)
		if !ok || s == "" {
			continue
		}
		switch m.Name {
		case "Employment Type", "Employment type", "Job Type":
			job.EmploymentType = s
		case "Salary", "Salary Range", "Compensation":
			job.Salary = s
		}
	}
	return job
}
