package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

// Source families. Each doubles as the rate-limit key for its connector.
const (
	FamilyLever      = "lever"
	FamilyGreenhouse = "greenhouse"
	FamilyAshby      = "ashby"
	FamilyRemoteOK   = "remoteok"
	FamilyRSS        = "rss"
	FamilySynthetic  = "synthetic"
)

// Source binds one connector to its identifier and is that connector's failure
// boundary: Fetch never returns an error and never panics. A failed fetch is
// logged and reported as zero postings.
type Source struct {
	family     string
	identifier string
	fetcher    model.JobFetcher
	enricher   *Enricher
	logger     *slog.Logger
}

// NewSource wraps fetcher as the source family:identifier.
func NewSource(family, identifier string, fetcher model.JobFetcher, enricher *Enricher, logger *slog.Logger) *Source {
	return &Source{
		family:     family,
		identifier: identifier,
		fetcher:    fetcher,
		enricher:   enricher,
		logger:     logger,
	}
}

// Label identifies the source in logs and ingestion summaries.
func (s *Source) Label() string {
	return SourceLabel(s.family, s.identifier)
}

// SourceLabel formats family:identifier, with "all" for an empty identifier.
func SourceLabel(family, identifier string) string {
	if identifier == "" {
		identifier = "all"
	}
	return family + ":" + identifier
}

// Family returns the connector family name.
func (s *Source) Family() string { return s.family }

// Fetch returns the best available postings for this run, already enriched.
func (s *Source) Fetch(ctx context.Context) (jobs []model.Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("source panicked",
				"source", s.Label(),
				"family", s.family,
				"identifier", s.identifier,
				"error", fmt.Sprint(r),
			)
			jobs = nil
		}
	}()

	raw, err := s.fetcher.FetchJobs(ctx)
	if err != nil {
		s.logger.Error("source fetch failed",
			"source", s.Label(),
			"family", s.family,
			"identifier", s.identifier,
			"error", err,
		)
		return nil
	}

	fallback := s.identifier
	if fallback == "" {
		fallback = s.family
	}
	jobs = make([]model.Job, 0, len(raw))
	for _, j := range raw {
		jobs = append(jobs, s.enricher.Enrich(j, fallback))
	}

	s.logger.Debug("source fetched",
		"source", s.Label(),
		"jobs", len(jobs),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return jobs
}
