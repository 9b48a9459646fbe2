package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobfeed/internal/model"
)

const (
	redisJobPrefix       = "job:"
	redisCreatedIndex    = "jobs:created"
	redisSubscribers     = "subscribers"
	redisSubscriberOrder = "subscribers:order"
	redisSubscriberSeq   = "subscribers:seq"
)

// RedisStore keeps each job as a JSON document under job:<id>, indexed by
// creation time in the jobs:created sorted set.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates and verifies a Redis client connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// redisJob is the stored document. Field names are part of the persisted format.
type redisJob struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location,omitempty"`
	Remote         bool       `json:"remote"`
	Country        string     `json:"country,omitempty"`
	Tags           []string   `json:"tags"`
	URL            string     `json:"url,omitempty"`
	Source         string     `json:"source"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Salary         string     `json:"salary,omitempty"`
	SalaryMin      *float64   `json:"salary_min,omitempty"`
	SalaryMax      *float64   `json:"salary_max,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	SeniorityLevel string     `json:"seniority_level"`
	Description    string     `json:"description,omitempty"`
}

// InsertIfAbsent writes the job document with SETNX and indexes it in the same
// transaction. The index entry keeps its first score.
func (s *RedisStore) InsertIfAbsent(ctx context.Context, job model.Job) (bool, error) {
	data, err := json.Marshal(redisJob(job))
	if err != nil {
		return false, fmt.Errorf("encoding job %s: %w", job.ID, err)
	}

	var setNX *redis.BoolCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		setNX = pipe.SetNX(ctx, redisJobPrefix+job.ID, data, 0)
		pipe.ZAddNX(ctx, redisCreatedIndex, redis.Z{
			Score:  float64(job.CreatedAt.UnixMilli()),
			Member: job.ID,
		})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return setNX.Val(), nil
}

// FindByIDs loads the jobs with the given ids, newest-posted first.
func (s *RedisStore) FindByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []model.Job{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisJobPrefix + id
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("finding jobs by id: %w", err)
	}

	jobs := make([]model.Job, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rj redisJob
		if err := json.Unmarshal([]byte(str), &rj); err != nil {
			return nil, fmt.Errorf("decoding job %s: %w", ids[i], err)
		}
		if rj.Tags == nil {
			rj.Tags = []string{}
		}
		jobs = append(jobs, model.Job(rj))
	}

	sortByPosted(jobs)
	return jobs, nil
}

// FindCreatedSince returns the ids of jobs ingested at or after since, oldest first.
func (s *RedisStore) FindCreatedSince(ctx context.Context, since time.Time) ([]string, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, redisCreatedIndex, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("finding jobs created since %s: %w", since.Format(time.RFC3339), err)
	}
	return ids, nil
}

type redisSubscriber struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
	Topics     string `json:"topics"`
}

func subscriberField(sub model.Subscriber) string {
	return string(sub.Type) + "|" + sub.Identifier
}

// ListSubscribers returns every subscriber in the order they were first added.
func (s *RedisStore) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	fields, err := s.rdb.ZRange(ctx, redisSubscriberOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	vals, err := s.rdb.HMGet(ctx, redisSubscribers, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}

	subs := make([]model.Subscriber, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rs redisSubscriber
		if err := json.Unmarshal([]byte(str), &rs); err != nil {
			return nil, fmt.Errorf("decoding subscriber: %w", err)
		}
		subs = append(subs, model.Subscriber{
			Type:       model.Channel(rs.Type),
			Identifier: rs.Identifier,
			Topics:     rs.Topics,
		})
	}
	return subs, nil
}

// AddSubscriber stores sub, replacing the topics of an existing subscriber
// with the same type and identifier.
func (s *RedisStore) AddSubscriber(ctx context.Context, sub model.Subscriber) error {
	if err := validateSubscriber(sub); err != nil {
		return err
	}
	data, err := json.Marshal(redisSubscriber{
		Type:       string(sub.Type),
		Identifier: sub.Identifier,
		Topics:     sub.Topics,
	})
	if err != nil {
		return fmt.Errorf("encoding subscriber: %w", err)
	}

	seq, err := s.rdb.Incr(ctx, redisSubscriberSeq).Result()
	if err != nil {
		return fmt.Errorf("adding %s subscriber: %w", sub.Type, err)
	}

	field := subscriberField(sub)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisSubscribers, field, data)
		pipe.ZAddNX(ctx, redisSubscriberOrder, redis.Z{
			Score:  float64(seq),
			Member: field,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding %s subscriber: %w", sub.Type, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
