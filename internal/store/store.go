// Package store holds the persistence gateways for jobs and subscribers.
// Every backend offers idempotent insert keyed by the job's content id.
package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// DefaultSQLitePath is used when the sqlite driver has no DSN.
const DefaultSQLitePath = "jobs.db"

// Store is a job store and subscriber store behind one connection.
type Store interface {
	model.JobStore
	model.SubscriberStore
	io.Closer
}

// Open connects to the backend named by driver. dsn is a file path for
// sqlite, a connection string for postgres and a redis:// URL for redis.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return NewSQLiteStore(dsn)
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn)
	case DriverRedis:
		return NewRedisStore(ctx, dsn)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// sortByPosted orders jobs newest-posted first, jobs without a date last.
// Ties keep their relative order.
func sortByPosted(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i].PostedAt, jobs[j].PostedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

// dedupeIDs drops blank and repeated ids.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateSubscriber(s model.Subscriber) error {
	if s.Type == "" || strings.TrimSpace(s.Identifier) == "" {
		return fmt.Errorf("subscriber needs a type and an identifier")
	}
	return nil
}
