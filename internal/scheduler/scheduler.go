// Package scheduler triggers the ingestion pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobfeed/internal/ingest"
)

// DefaultSchedule runs the pipeline hourly.
const DefaultSchedule = "@every 1h"

// Runner is one pipeline cycle.
type Runner interface {
	Run(ctx context.Context) (ingest.Result, error)
}

// Scheduler owns the main loop: one immediate run, then one run per schedule
// tick. A tick that fires while a run is in progress is skipped.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	runner   Runner
	logger   *slog.Logger
}

// New parses expr, a standard five-field cron expression or a descriptor
// such as "@hourly" or "@every 30m". An empty expr selects DefaultSchedule.
func New(expr string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", expr, err)
	}
	return &Scheduler{
		expr:     expr,
		schedule: schedule,
		runner:   runner,
		logger:   logger,
	}, nil
}

// Next reports when the schedule fires after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is cancelled, then waits for an in-progress run to
// return. It returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(cl))
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).
		Then(cron.FuncJob(func() { s.runOnce(ctx) }))
	c.Schedule(s.schedule, job)

	s.logger.Info("starting scheduler",
		"schedule", s.expr,
		"next_run", s.Next(time.Now()).Format(time.RFC3339),
	)
	c.Start()

	// Run one immediate cycle.
	job.Run()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled run failed",
			"run_id", res.RunID,
			"error", err,
		)
		return
	}
	s.logger.Debug("scheduled run finished",
		"run_id", res.RunID,
		"inserted", res.Inserted,
	)
}

// cronLogger routes cron's logging into slog. Cron's info messages cover
// every wake-up, so they go to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
