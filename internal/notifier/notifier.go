// Package notifier matches newly ingested jobs to subscribers and dispatches
// one message per job through the subscriber's channel.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobfeed/internal/filter"
	"github.com/amishk599/jobfeed/internal/model"
)

// DefaultMaxPerSubscriber caps how many jobs one subscriber hears about per call.
const DefaultMaxPerSubscriber = 10

// Notifier loads jobs by id, filters them per subscriber and hands the
// messages to the sender registered for the subscriber's channel.
type Notifier struct {
	jobs             model.JobStore
	subscribers      model.SubscriberStore
	senders          map[model.Channel]model.Sender
	maxPerSubscriber int
	logger           *slog.Logger
}

// New creates a Notifier. maxPerSubscriber <= 0 selects DefaultMaxPerSubscriber.
func New(jobs model.JobStore, subscribers model.SubscriberStore, senders map[model.Channel]model.Sender, maxPerSubscriber int, logger *slog.Logger) *Notifier {
	if maxPerSubscriber <= 0 {
		maxPerSubscriber = DefaultMaxPerSubscriber
	}
	s := make(map[model.Channel]model.Sender, len(senders))
	for ch, sender := range senders {
		s[ch] = sender
	}
	return &Notifier{
		jobs:             jobs,
		subscribers:      subscribers,
		senders:          s,
		maxPerSubscriber: maxPerSubscriber,
		logger:           logger,
	}
}

// Summary counts what a NotifySubscribers call dispatched.
type Summary struct {
	Subscribers int
	Sent        int
	Failed      int
}

// NotifySubscribers dispatches the jobs behind ids to every subscriber whose
// topics they match. It returns an error only when jobs or subscribers cannot
// be loaded; individual dispatch failures are logged and skipped.
func (n *Notifier) NotifySubscribers(ctx context.Context, ids []string) error {
	_, err := n.Notify(ctx, ids)
	return err
}

// Notify is NotifySubscribers with a dispatch summary.
func (n *Notifier) Notify(ctx context.Context, ids []string) (Summary, error) {
	var sum Summary
	if len(ids) == 0 {
		return sum, nil
	}

	subs, err := n.subscribers.ListSubscribers(ctx)
	if err != nil {
		return sum, fmt.Errorf("notifier loading subscribers: %w", err)
	}
	if len(subs) == 0 {
		n.logger.Debug("no subscribers, skipping notification", "jobs", len(ids))
		return sum, nil
	}

	jobs, err := n.jobs.FindByIDs(ctx, ids)
	if err != nil {
		return sum, fmt.Errorf("notifier loading %d jobs: %w", len(ids), err)
	}
	if len(jobs) == 0 {
		return sum, nil
	}

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Subscribers++
		sent, failed := n.notifyOne(ctx, sub, jobs)
		sum.Sent += sent
		sum.Failed += failed
	}

	n.logger.Info("notifications complete",
		"subscribers", sum.Subscribers,
		"sent", sum.Sent,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (n *Notifier) notifyOne(ctx context.Context, sub model.Subscriber, jobs []model.Job) (sent, failed int) {
	sender, ok := n.senders[sub.Type]
	if !ok {
		n.logger.Warn("no sender for subscriber channel",
			"channel", sub.Type,
			"subscriber", redact(sub.Identifier),
			"error", model.ErrUnknownChannel,
		)
		return 0, 0
	}

	f := filter.ParseTopicFilter(sub.Topics)
	for _, j := range jobs {
		if sent+failed >= n.maxPerSubscriber {
			break
		}
		if !f.Match(j) {
			continue
		}
		if err := sender.Send(ctx, sub.Identifier, FormatMessage(j)); err != nil {
			n.logger.Error("notification failed",
				"channel", sub.Type,
				"subscriber", redact(sub.Identifier),
				"job_id", j.ID,
				"error", err,
			)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// redact drops the last path segment of a webhook URL, which is its secret,
// for logging. Other identifiers pass through.
func redact(identifier string) string {
	if !strings.Contains(identifier, "://") {
		return identifier
	}
	i := strings.LastIndex(identifier, "/")
	if i < strings.Index(identifier, "://")+3 {
		return redactURL(identifier)
	}
	return identifier[:i+1] + "…"
}
