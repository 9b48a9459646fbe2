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

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	Title            string             `json:"title"`
	Location         string             `json:"location"`
	Department       string             `json:"department"`
	Team             string             `json:"team"`
	EmploymentType   string             `json:"employmentType"`
	JobURL           string             `json:"jobUrl"`
	ApplyURL         string             `json:"applyUrl"`
	PublishedAt      string             `json:"publishedAt"`
	IsListed         bool               `json:"isListed"`
	IsRemote         bool               `json:"isRemote"`
	DescriptionPlain string             `json:"descriptionPlain"`
	DescriptionHTML  string             `json:"descriptionHtml"`
	Compensation     *ashbyCompensation `json:"compensation"`
}

type ashbyCompensation struct {
	Summary string `json:"compensationTierSummary"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// AshbyAdapter fetches jobs from the Ashby public job board API.
type AshbyAdapter struct {
	boardToken string
	client     *http.Client
	logger     *slog.Logger
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(boardToken string, client *http.Client, logger *slog.Logger) *AshbyAdapter {
	return &AshbyAdapter{
		boardToken: boardToken,
		client:     client,
		logger:     logger,
	}
}

// FetchJobs retrieves all listed jobs from the Ashby job board and maps them
// into the canonical Job model.
func (a *AshbyAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyBaseURL, a.boardToken)

	body, err := fetchBody(ctx, a.client, FamilyAshby, a.boardToken, url, nil)
	if err != nil {
		return nil, err
	}

	var ashbyResp ashbyResponse
	if err := json.Unmarshal(body, &ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", a.boardToken, err)
	}

	ashbyJobs := decodeEach[ashbyJob](ashbyResp.Jobs, a.logger, FamilyAshby, a.boardToken)
	jobs := make([]model.Job, 0, len(ashbyJobs))
	for _, aj := range ashbyJobs {
		if !aj.IsListed {
			continue
		}

		description := aj.DescriptionPlain
		if description == "" {
			description = aj.DescriptionHTML
		}

		job := model.Job{
			Title:          aj.Title,
			Company:        a.boardToken,
			Location:       aj.Location,
			Remote:         aj.IsRemote || isRemote(aj.Location, aj.Title),
			Tags:           []string{aj.Department, aj.Team},
			URL:            aj.JobURL,
			Source:         FamilyAshby,
			PostedAt:       parseTime(aj.PublishedAt, time.RFC3339Nano, time.RFC3339),
			EmploymentType: aj.EmploymentType,
			Description:    extractText(description),
		}
		if job.URL == "" {
			job.URL = aj.ApplyURL
		}
		if aj.Compensation != nil {
			job.Salary = aj.Compensation.Summary
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
