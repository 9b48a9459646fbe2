package adapter

import (
	"strings"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
)

const untitled = "Untitled"

// Enricher completes a connector's raw mapping: fallbacks, the content id and
// the derived attributes. Connectors stay pure field mappers.
type Enricher struct {
	salary normalize.SalaryParser
	now    func() time.Time
}

// NewEnricher returns an Enricher using salary for salary text and the wall clock
// for CreatedAt.
func NewEnricher(salary normalize.SalaryParser) *Enricher {
	return &Enricher{salary: salary, now: time.Now}
}

// Enrich fills in everything the canonical job requires. fallbackCompany is used
// when the source did not name the company.
func (e *Enricher) Enrich(j model.Job, fallbackCompany string) model.Job {
	j.Title = strings.TrimSpace(j.Title)
	if j.Title == "" {
		j.Title = untitled
	}
	j.Company = strings.TrimSpace(j.Company)
	if j.Company == "" {
		j.Company = fallbackCompany
	}
	j.URL = strings.TrimSpace(j.URL)
	j.Location = strings.TrimSpace(j.Location)
	j.Tags = normalize.NormalizeTags(j.Tags)

	j.ID = normalize.StableID(j.Title, j.Company, j.URL)

	if j.Country == "" {
		j.Country = normalize.ParseCountry(j.Location)
	}
	j.SeniorityLevel = normalize.ParseSeniorityLevel(j.Title, j.Description)

	j.Salary = strings.TrimSpace(j.Salary)
	if j.Salary != "" && j.SalaryMin == nil && j.SalaryMax == nil {
		s := e.salary.Parse(j.Salary)
		j.SalaryMin, j.SalaryMax = s.Min, s.Max
		if j.Currency == "" {
			j.Currency = s.Currency
		}
	}

	if j.CreatedAt.IsZero() {
		j.CreatedAt = e.now().UTC()
	}
	return j
}
