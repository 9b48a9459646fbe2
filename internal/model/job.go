package model

import (
	"context"
	"time"
)

// Job is the canonical, source-agnostic representation of a posting.
// Connectors map their payloads into it; the store persists it keyed by ID.
type Job struct {
	ID             string     // content hash of title|company|url
	Title          string     // never empty after enrichment ("Untitled" fallback)
	Company        string     // never empty after enrichment (source identifier fallback)
	Location       string     // free text, may be empty
	Remote         bool       // derived, not copied
	Country        string     // derived from Location, empty if unrecognized
	Tags           []string   // normalized, insertion order preserved
	URL            string     // detail/apply link, may be empty
	Source         string     // connector name: lever, greenhouse, remoteok, rss, ...
	PostedAt       *time.Time // nullable (not all sources provide this)
	CreatedAt      time.Time  // our clock (set at ingestion)
	Salary         string     // raw salary text as reported
	SalaryMin      *float64
	SalaryMax      *float64
	Currency       string
	EmploymentType string
	SeniorityLevel string // always derived, "Mid" when no signal
	Description    string // plain text
}

// Channel names an outbound notification channel.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
	ChannelSlack    Channel = "slack"
	ChannelLog      Channel = "log"
)

// Subscriber is someone who wants to hear about new postings on one channel.
// Topics is the comma-delimited keyword list as stored; empty means everything.
type Subscriber struct {
	Type       Channel
	Identifier string // telegram chat id or webhook URL
	Topics     string
}

// JobFetcher fetches postings from one external source. Implementations are
// bound to their source identifier at construction.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]Job, error)
}

// JobStore is the persistence gateway for canonical jobs.
type JobStore interface {
	// InsertIfAbsent stores job unless its ID is already known. It reports
	// whether a row was actually written.
	InsertIfAbsent(ctx context.Context, job Job) (bool, error)
	// FindByIDs loads jobs newest-posted first; jobs without PostedAt sort last.
	FindByIDs(ctx context.Context, ids []string) ([]Job, error)
	FindCreatedSince(ctx context.Context, since time.Time) ([]string, error)
}

// SubscriberStore holds notification subscribers.
type SubscriberStore interface {
	ListSubscribers(ctx context.Context) ([]Subscriber, error)
	AddSubscriber(ctx context.Context, s Subscriber) error
}

// Sender delivers one text message to one destination on a channel.
type Sender interface {
	Send(ctx context.Context, identifier, text string) error
}

// JobFilter decides whether a job matches a set of criteria.
type JobFilter interface {
	Match(job Job) bool
}
