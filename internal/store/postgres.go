package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		company         TEXT NOT NULL,
		location        TEXT NOT NULL DEFAULT '',
		remote          BOOLEAN NOT NULL DEFAULT FALSE,
		country         TEXT NOT NULL DEFAULT '',
		tags            TEXT NOT NULL DEFAULT '',
		url             TEXT NOT NULL DEFAULT '',
		source          TEXT NOT NULL DEFAULT '',
		posted_at       TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL,
		salary          TEXT NOT NULL DEFAULT '',
		salary_min      DOUBLE PRECISION,
		salary_max      DOUBLE PRECISION,
		currency        TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL DEFAULT '',
		seniority_level TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_created_at ON jobs (created_at)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id         BIGSERIAL PRIMARY KEY,
		type       TEXT NOT NULL,
		identifier TEXT NOT NULL,
		topics     TEXT NOT NULL DEFAULT '',
		UNIQUE (type, identifier)
	)`,
}

// PostgresStore persists jobs and subscribers in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates and verifies a pgxpool connection pool, then
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating postgres schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

// InsertIfAbsent writes job unless a row with its ID exists.
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, job model.Job) (bool, error) {
	tag, err := s.pool.Exec(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING`,
		job.ID, job.Title, job.Company, job.Location, job.Remote, job.Country,
		normalize.JoinTags(job.Tags), job.URL, job.Source,
		job.PostedAt, job.CreatedAt,
		job.Salary, job.SalaryMin, job.SalaryMax, job.Currency,
		job.EmploymentType, job.SeniorityLevel, job.Description,
	)
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindByIDs loads the jobs with the given ids, newest-posted first.
func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []model.Job{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1)
		 ORDER BY posted_at DESC NULLS LAST, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("finding jobs by id: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0, len(ids))
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// FindCreatedSince returns the ids of jobs ingested at or after since, oldest first.
func (s *PostgresStore) FindCreatedSince(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM jobs WHERE created_at >= $1 ORDER BY created_at, id`, since)
	if err != nil {
		return nil, fmt.Errorf("finding jobs created since %s: %w", since.Format(time.RFC3339), err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("finding jobs created since %s: %w", since.Format(time.RFC3339), err)
	}
	return ids, nil
}

// ListSubscribers returns every subscriber in insertion order.
func (s *PostgresStore) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `SELECT type, identifier, topics FROM subscribers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscriber
	for rows.Next() {
		var sub model.Subscriber
		var typ string
		if err := rows.Scan(&typ, &sub.Identifier, &sub.Topics); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		sub.Type = model.Channel(typ)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// AddSubscriber stores sub, replacing the topics of an existing subscriber
// with the same type and identifier.
func (s *PostgresStore) AddSubscriber(ctx context.Context, sub model.Subscriber) error {
	if err := validateSubscriber(sub); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO subscribers (type, identifier, topics) VALUES ($1, $2, $3)
		ON CONFLICT (type, identifier) DO UPDATE SET topics = EXCLUDED.topics`,
		string(sub.Type), sub.Identifier, sub.Topics)
	if err != nil {
		return fmt.Errorf("adding %s subscriber: %w", sub.Type, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgJob(row pgx.Row) (model.Job, error) {
	var (
		j    model.Job
		tags string
	)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Remote, &j.Country,
		&tags, &j.URL, &j.Source, &j.PostedAt, &j.CreatedAt,
		&j.Salary, &j.SalaryMin, &j.SalaryMax, &j.Currency,
		&j.EmploymentType, &j.SeniorityLevel, &j.Description)
	if err != nil {
		return model.Job{}, err
	}
	j.Tags = normalize.ParseTags(tags)
	j.CreatedAt = j.CreatedAt.UTC()
	if j.PostedAt != nil {
		t := j.PostedAt.UTC()
		j.PostedAt = &t
	}
	return j, nil
}
