package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobfeed/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(v float64) *float64    { return &v }

// sampleJobs returns three jobs with ids unique to this call: one posted
// yesterday, one posted today and one without a posted date.
func sampleJobs(created time.Time) []model.Job {
	prefix := uuid.NewString() + "-"
	return []model.Job{
		{
			ID: prefix + "old", Title: "Senior Solidity Engineer", Company: "Chainforge",
			Location: "London, UK", Remote: true, Country: "United Kingdom",
			Tags: []string{"solidity", "web3"}, URL: "https://a.example/1", Source: "lever",
			PostedAt: ptrTime(created.Add(-24 * time.Hour)), CreatedAt: created,
			Salary: "£70k-£90k", SalaryMin: ptrFloat(70000), SalaryMax: ptrFloat(90000), Currency: "GBP",
			EmploymentType: "Full-time", SeniorityLevel: "Senior", Description: "contracts",
		},
		{
			ID: prefix + "new", Title: "NFT Engineer", Company: "Mintpath",
			Tags: []string{}, Source: "remoteok",
			PostedAt: ptrTime(created), CreatedAt: created.Add(time.Second),
			SeniorityLevel: "Mid",
		},
		{
			ID: prefix + "undated", Title: "Data Engineer", Company: "Ledgerly",
			Tags: []string{"python"}, Source: "rss",
			CreatedAt: created.Add(2 * time.Second), SeniorityLevel: "Mid",
		},
	}
}

// testJobContract exercises the model.JobStore contract. It only touches ids
// it created, so it is safe against shared databases.
func testJobContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)
	jobs := sampleJobs(created)

	for _, j := range jobs {
		inserted, err := s.InsertIfAbsent(ctx, j)
		if err != nil {
			t.Fatalf("InsertIfAbsent(%s): %v", j.ID, err)
		}
		if !inserted {
			t.Errorf("expected first insert of %s to write", j.ID)
		}
	}

	// Re-inserting is a no-op, even with different content.
	dup := jobs[0]
	dup.Title = "changed"
	inserted, err := s.InsertIfAbsent(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate InsertIfAbsent: %v", err)
	}
	if inserted {
		t.Error("expected duplicate insert to report false")
	}

	ids := []string{jobs[2].ID, jobs[0].ID, "missing-id", jobs[1].ID, jobs[0].ID}
	got, err := s.FindByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(got))
	}
	wantOrder := []string{jobs[1].ID, jobs[0].ID, jobs[2].ID}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	round := got[1]
	if round.Title != "Senior Solidity Engineer" {
		t.Errorf("expected original title kept, got %q", round.Title)
	}
	if len(round.Tags) != 2 || round.Tags[0] != "solidity" || round.Tags[1] != "web3" {
		t.Errorf("expected tags round trip, got %v", round.Tags)
	}
	if round.SalaryMin == nil || *round.SalaryMin != 70000 || round.SalaryMax == nil || *round.SalaryMax != 90000 {
		t.Errorf("expected salary round trip, got %v-%v", round.SalaryMin, round.SalaryMax)
	}
	if !round.Remote || round.Country != "United Kingdom" || round.Currency != "GBP" {
		t.Errorf("unexpected round trip %+v", round)
	}
	if round.PostedAt == nil || !round.PostedAt.Equal(created.Add(-24*time.Hour)) {
		t.Errorf("expected PostedAt round trip, got %v", round.PostedAt)
	}
	if !round.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt %v, got %v", created, round.CreatedAt)
	}
	if got[2].PostedAt != nil {
		t.Errorf("expected nil PostedAt, got %v", got[2].PostedAt)
	}
	if got[0].SalaryMin != nil {
		t.Errorf("expected nil SalaryMin, got %v", *got[0].SalaryMin)
	}
	if got[0].Tags == nil || len(got[0].Tags) != 0 {
		t.Errorf("expected empty tags, got %v", got[0].Tags)
	}

	since, err := s.FindCreatedSince(ctx, created.Add(time.Second))
	if err != nil {
		t.Fatalf("FindCreatedSince: %v", err)
	}
	mine := map[string]bool{}
	for _, id := range since {
		mine[id] = true
	}
	if mine[jobs[0].ID] || !mine[jobs[1].ID] || !mine[jobs[2].ID] {
		t.Errorf("FindCreatedSince returned %v", since)
	}

	empty, err := s.FindByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("FindByIDs(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no jobs for no ids, got %d", len(empty))
	}
}

// testSubscriberContract checks add, upsert and listing order.
func testSubscriberContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	chat := uuid.NewString()

	subs := []model.Subscriber{
		{Type: model.ChannelTelegram, Identifier: chat, Topics: "solidity"},
		{Type: model.ChannelDiscord, Identifier: "https://discord.com/api/webhooks/" + chat, Topics: ""},
	}
	for _, sub := range subs {
		if err := s.AddSubscriber(ctx, sub); err != nil {
			t.Fatalf("AddSubscriber: %v", err)
		}
	}
	// Same type and identifier replaces topics.
	if err := s.AddSubscriber(ctx, model.Subscriber{Type: model.ChannelTelegram, Identifier: chat, Topics: "solidity,nft"}); err != nil {
		t.Fatalf("AddSubscriber upsert: %v", err)
	}
	if err := s.AddSubscriber(ctx, model.Subscriber{Type: model.ChannelTelegram}); err == nil {
		t.Error("expected error for subscriber without identifier")
	}

	list, err := s.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("ListSubscribers: %v", err)
	}
	var found []model.Subscriber
	for _, sub := range list {
		if sub.Identifier == subs[0].Identifier || sub.Identifier == subs[1].Identifier {
			found = append(found, sub)
		}
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 subscribers, got %v", found)
	}
	if found[0].Type != model.ChannelTelegram || found[0].Topics != "solidity,nft" {
		t.Errorf("expected upserted telegram subscriber first, got %+v", found[0])
	}
	if found[1].Type != model.ChannelDiscord {
		t.Errorf("expected discord subscriber second, got %+v", found[1])
	}
}

func TestSQLiteStore_JobContract(t *testing.T) {
	testJobContract(t, newTestStore(t))
}

func TestSQLiteStore_SubscriberContract(t *testing.T) {
	testSubscriberContract(t, newTestStore(t))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	job := model.Job{ID: "persisted", Title: "T", Company: "C", CreatedAt: time.Now()}
	if _, err := s.InsertIfAbsent(context.Background(), job); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	inserted, err := s2.InsertIfAbsent(context.Background(), job)
	if err != nil {
		t.Fatalf("InsertIfAbsent after reopen: %v", err)
	}
	if inserted {
		t.Error("expected job to be known after reopening the database")
	}
}

func TestSQLiteStore_FindByIDsChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ids := make([]string, 0, sqliteMaxVars+20)
	for i := range sqliteMaxVars + 20 {
		id := uuid.NewString()
		ids = append(ids, id)
		job := model.Job{ID: id, Title: "T", Company: "C", CreatedAt: time.UnixMilli(int64(i))}
		if _, err := s.InsertIfAbsent(ctx, job); err != nil {
			t.Fatalf("InsertIfAbsent: %v", err)
		}
	}
	got, err := s.FindByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != len(ids) {
		t.Errorf("expected %d jobs, got %d", len(ids), len(got))
	}
}
