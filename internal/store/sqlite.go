package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
)

// sqliteMaxVars keeps IN lists under SQLite's bound-parameter limit.
const sqliteMaxVars = 500

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	remote          INTEGER NOT NULL DEFAULT 0,
	country         TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '',
	url             TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	posted_at       INTEGER,
	created_at      INTEGER NOT NULL,
	salary          TEXT NOT NULL DEFAULT '',
	salary_min      REAL,
	salary_max      REAL,
	currency        TEXT NOT NULL DEFAULT '',
	employment_type TEXT NOT NULL DEFAULT '',
	seniority_level TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS jobs_created_at ON jobs (created_at);
CREATE TABLE IF NOT EXISTS subscribers (
	type       TEXT NOT NULL,
	identifier TEXT NOT NULL,
	topics     TEXT NOT NULL DEFAULT '',
	UNIQUE (type, identifier)
);`

const jobColumns = `id, title, company, location, remote, country, tags, url, source,
	posted_at, created_at, salary, salary_min, salary_max, currency,
	employment_type, seniority_level, description`

// SQLiteStore persists jobs and subscribers in a SQLite database. Times are
// stored as Unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// jobs and subscribers tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InsertIfAbsent writes job unless a row with its ID exists.
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, job model.Job) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Company, job.Location, job.Remote, job.Country,
		normalize.JoinTags(job.Tags), job.URL, job.Source,
		millisPtr(job.PostedAt), job.CreatedAt.UnixMilli(),
		job.Salary, job.SalaryMin, job.SalaryMax, job.Currency,
		job.EmploymentType, job.SeniorityLevel, job.Description,
	)
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return n > 0, nil
}

// FindByIDs loads the jobs with the given ids, newest-posted first. Unknown
// ids are ignored.
func (s *SQLiteStore) FindByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	ids = dedupeIDs(ids)
	jobs := make([]model.Job, 0, len(ids))
	for start := 0; start < len(ids); start += sqliteMaxVars {
		end := min(start+sqliteMaxVars, len(ids))
		chunk := ids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := `SELECT ` + jobColumns + ` FROM jobs WHERE id IN (?` + strings.Repeat(", ?", len(chunk)-1) + `)`

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("finding jobs by id: %w", err)
		}
		for rows.Next() {
			j, err := scanJob(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning job: %w", err)
			}
			jobs = append(jobs, j)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("finding jobs by id: %w", err)
		}
	}

	sortByPosted(jobs)
	return jobs, nil
}

// FindCreatedSince returns the ids of jobs ingested at or after since, oldest first.
func (s *SQLiteStore) FindCreatedSince(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM jobs WHERE created_at >= ? ORDER BY created_at, id", since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("finding jobs created since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSubscribers returns every subscriber in insertion order.
func (s *SQLiteStore) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, identifier, topics FROM subscribers ORDER BY rowid")
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

// AddSubscriber stores sub. An existing subscriber with the same type and
// identifier gets its topics replaced.
func (s *SQLiteStore) AddSubscriber(ctx context.Context, sub model.Subscriber) error {
	if err := validateSubscriber(sub); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO subscribers (type, identifier, topics) VALUES (?, ?, ?)
		ON CONFLICT (type, identifier) DO UPDATE SET topics = excluded.topics`,
		string(sub.Type), sub.Identifier, sub.Topics)
	if err != nil {
		return fmt.Errorf("adding %s subscriber: %w", sub.Type, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.Job, error) {
	var (
		j         model.Job
		tags      string
		postedAt  sql.NullInt64
		createdAt int64
		salaryMin sql.NullFloat64
		salaryMax sql.NullFloat64
	)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Remote, &j.Country,
		&tags, &j.URL, &j.Source, &postedAt, &createdAt,
		&j.Salary, &salaryMin, &salaryMax, &j.Currency,
		&j.EmploymentType, &j.SeniorityLevel, &j.Description)
	if err != nil {
		return model.Job{}, err
	}

	j.Tags = normalize.ParseTags(tags)
	if postedAt.Valid {
		t := time.UnixMilli(postedAt.Int64).UTC()
		j.PostedAt = &t
	}
	j.CreatedAt = time.UnixMilli(createdAt).UTC()
	if salaryMin.Valid {
		j.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		j.SalaryMax = &salaryMax.Float64
	}
	return j, nil
}

func millisPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
