package adapter

import (
	"context"
	"testing"
)

func TestAshbyFetchJobs_Success(t *testing.T) {
	payload := `{
		"apiVersion": "1",
		"jobs": [
			{
				"title": "Software Engineer",
				"location": "San Francisco, CA",
				"department": "Engineering",
				"team": "Infra",
				"employmentType": "FullTime",
				"jobUrl": "https://jobs.ashbyhq.com/acme/abc-123",
				"publishedAt": "2026-02-13T10:00:00.123+00:00",
				"isListed": true,
				"isRemote": true,
				"descriptionPlain": "Plain description",
				"compensation": {"compensationTierSummary": "€80K – €100K"}
			},
			{
				"title": "Backend Engineer",
				"location": "NYC",
				"applyUrl": "https://jobs.ashbyhq.com/acme/def-456/application",
				"publishedAt": "2026-02-13T11:30:00Z",
				"isListed": true,
				"descriptionHtml": "<p>HTML <em>only</em></p>"
			},
			{
				"title": "Unlisted Role",
				"location": "NYC",
				"jobUrl": "https://jobs.ashbyhq.com/acme/ghi-789",
				"isListed": false
			}
		]
	}`
	var uri string
	srv := jsonServer(payload, &uri)
	defer srv.Close()

	a := NewAshbyAdapter("acme", testClient(srv), discardLogger())

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "/posting-api/job-board/acme?includeCompensation=true" {
		t.Errorf("unexpected request URI %q", uri)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 listed jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if !j.Remote {
		t.Error("expected isRemote flag to mark job remote")
	}
	if j.Company != "acme" {
		t.Errorf("expected company acme, got %s", j.Company)
	}
	if j.EmploymentType != "FullTime" {
		t.Errorf("expected employment type FullTime, got %s", j.EmploymentType)
	}
	if j.Salary != "€80K – €100K" {
		t.Errorf("expected compensation summary as salary text, got %q", j.Salary)
	}
	if j.PostedAt == nil {
		t.Error("expected PostedAt to be parsed")
	}
	if len(j.Tags) != 2 || j.Tags[0] != "Engineering" || j.Tags[1] != "Infra" {
		t.Errorf("expected department and team tags, got %v", j.Tags)
	}

	j2 := jobs[1]
	if j2.Remote {
		t.Error("expected NYC job to not be remote")
	}
	if j2.URL != "https://jobs.ashbyhq.com/acme/def-456/application" {
		t.Errorf("expected applyUrl fallback, got %s", j2.URL)
	}
	if j2.Description != "HTML only" {
		t.Errorf("expected stripped HTML description, got %q", j2.Description)
	}
}

func TestAshbyFetchJobs_MalformedJSON(t *testing.T) {
	srv := jsonServer(`not json`, nil)
	defer srv.Close()

	if _, err := NewAshbyAdapter("bad", testClient(srv), discardLogger()).FetchJobs(context.Background()); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}
