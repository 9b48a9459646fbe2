package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

// MemoryStore keeps everything in process memory. It backs dry runs, where
// nothing should outlive the command, and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	jobs        map[string]model.Job
	subscribers []model.Subscriber
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryStore) InsertIfAbsent(_ context.Context, job model.Job) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return false, nil
	}
	tags := make([]string, len(job.Tags))
	copy(tags, job.Tags)
	job.Tags = tags
	s.jobs[job.ID] = job
	return true, nil
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []string) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]model.Job, 0, len(ids))
	for _, id := range dedupeIDs(ids) {
		if j, ok := s.jobs[id]; ok {
			jobs = append(jobs, j)
		}
	}
	sortByPosted(jobs)
	return jobs, nil
}

func (s *MemoryStore) FindCreatedSince(_ context.Context, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []model.Job
	for _, j := range s.jobs {
		if !j.CreatedAt.Before(since) {
			matched = append(matched, j)
		}
	}
	sort.Slice(matched, func(a, b int) bool {
		if !matched[a].CreatedAt.Equal(matched[b].CreatedAt) {
			return matched[a].CreatedAt.Before(matched[b].CreatedAt)
		}
		return matched[a].ID < matched[b].ID
	})
	ids := make([]string, len(matched))
	for i, j := range matched {
		ids[i] = j.ID
	}
	return ids, nil
}

func (s *MemoryStore) ListSubscribers(_ context.Context) ([]model.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Subscriber(nil), s.subscribers...), nil
}

func (s *MemoryStore) AddSubscriber(_ context.Context, sub model.Subscriber) error {
	if err := validateSubscriber(sub); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subscribers {
		if existing.Type == sub.Type && existing.Identifier == sub.Identifier {
			s.subscribers[i].Topics = sub.Topics
			return nil
		}
	}
	s.subscribers = append(s.subscribers, sub)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
