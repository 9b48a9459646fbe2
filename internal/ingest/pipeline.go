package ingest

import (
	"context"
	"log/slog"
)

// Notifier receives the ids a run inserted.
type Notifier interface {
	NotifySubscribers(ctx context.Context, ids []string) error
}

// Pipeline is one full cycle: ingest, then notify subscribers about what was new.
type Pipeline struct {
	orchestrator *Orchestrator
	notifier     Notifier
	logger       *slog.Logger
}

// NewPipeline chains orchestrator and notifier. A nil notifier skips notification.
func NewPipeline(orchestrator *Orchestrator, notifier Notifier, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		notifier:     notifier,
		logger:       logger,
	}
}

// Sources returns the labels of the configured sources.
func (p *Pipeline) Sources() []string {
	return p.orchestrator.Sources()
}

// Run ingests every source and notifies subscribers of the new ids. A failed
// notification is logged; the ingestion result stands either way.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res, err := p.orchestrator.IngestAll(ctx)
	if err != nil {
		return res, err
	}
	if p.notifier == nil || len(res.NewIDs) == 0 {
		return res, nil
	}
	if err := p.notifier.NotifySubscribers(ctx, res.NewIDs); err != nil {
		p.logger.Error("notification failed",
			"run_id", res.RunID,
			"jobs", len(res.NewIDs),
			"error", err,
		)
	}
	return res, nil
}
