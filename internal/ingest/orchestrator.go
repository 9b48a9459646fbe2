// Package ingest runs every configured source, persists what they return and
// hands the newly inserted ids to the notifier.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobfeed/internal/model"
)

// DefaultConcurrency is how many sources are fetched at once when no limit is configured.
const DefaultConcurrency = 4

// Source is one configured connector. Fetch must not fail: errors are
// reported as an empty result.
type Source interface {
	Label() string
	Fetch(ctx context.Context) []model.Job
}

// Result summarises one ingestion run.
type Result struct {
	RunID    string
	Inserted int
	// Sources lists every attempted source label, in configuration order.
	Sources []string
	// NewIDs holds the ids written by this run, in insertion order.
	NewIDs  []string
	Fetched int
	Failed  int
}

// Orchestrator fans out over its sources with a bounded worker pool, joins,
// then inserts every posting if absent.
type Orchestrator struct {
	sources     []Source
	store       model.JobStore
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator over sources. concurrency <= 0
// selects DefaultConcurrency.
func NewOrchestrator(sources []Source, store model.JobStore, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		sources:     append([]Source(nil), sources...),
		store:       store,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Sources returns the labels of the configured sources.
func (o *Orchestrator) Sources() []string {
	labels := make([]string, len(o.sources))
	for i, s := range o.sources {
		labels[i] = s.Label()
	}
	return labels
}

// IngestAll runs one ingestion pass. Source failures only reduce what gets
// inserted. An error is returned when ctx is cancelled or when every
// attempted insert failed.
func (o *Orchestrator) IngestAll(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{
		RunID:   uuid.NewString(),
		Sources: o.Sources(),
		NewIDs:  []string{},
	}
	logger := o.logger.With("run_id", res.RunID)
	logger.Info("ingestion started", "sources", len(o.sources))

	batches := make([][]model.Job, len(o.sources))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, src := range o.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			batches[i] = src.Fetch(ctx)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("ingestion %s cancelled: %w", res.RunID, err)
	}

	var lastErr error
	for i, batch := range batches {
		res.Fetched += len(batch)
		inserted := 0
		for _, job := range batch {
			ok, err := o.store.InsertIfAbsent(ctx, job)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return res, fmt.Errorf("ingestion %s cancelled: %w", res.RunID, err)
				}
				logger.Error("insert failed",
					"source", res.Sources[i],
					"job_id", job.ID,
					"error", err,
				)
				res.Failed++
				lastErr = err
				continue
			}
			if ok {
				inserted++
				res.NewIDs = append(res.NewIDs, job.ID)
			}
		}
		logger.Debug("source persisted",
			"source", res.Sources[i],
			"fetched", len(batch),
			"inserted", inserted,
		)
	}
	res.Inserted = len(res.NewIDs)

	logger.Info("ingestion complete",
		"sources", len(res.Sources),
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"failed", res.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if res.Fetched > 0 && res.Failed == res.Fetched {
		return res, fmt.Errorf("ingestion %s: all %d inserts failed: %w", res.RunID, res.Failed, lastErr)
	}
	return res, nil
}
