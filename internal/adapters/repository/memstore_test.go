package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...Option) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(context.Background(), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	store := newTestStore(t, WithClock(clock.Now))

	if n := store.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}

	job, created, err := store.Create(ctx, model.AnalysisJob{
		ID:      "job-1",
		Owner:   "user-1",
		Status:  model.JobCompleted, // ignored on create
		Profile: model.Profile{CareerGoal: "Web Developer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected job to be created")
	}
	if job.Status != model.JobPending {
		t.Errorf("expected pending, got %s", job.Status)
	}
	if !job.CreatedAt.Equal(clock.Now()) {
		t.Errorf("expected created_at %v, got %v", clock.Now(), job.CreatedAt)
	}

	clock.Advance(2 * time.Second)
	res := model.Result{Score: 64, Summary: "ok", Suggestions: []string{"a", "b"}, Source: model.SourceEngine}
	if err := store.Complete(ctx, "job-1", res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.JobCompleted || got.Result == nil || got.Result.Score != 64 {
		t.Errorf("unexpected job %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(clock.Now()) {
		t.Errorf("expected completed_at %v, got %v", clock.Now(), got.CompletedAt)
	}
	if got.Profile.CareerGoal != "Web Developer" || got.Owner != "user-1" {
		t.Errorf("profile or owner lost: %+v", got)
	}

	// returned copies must not alias store memory
	got.Result.Suggestions[0] = "mutated"
	again, _ := store.Get(ctx, "job-1")
	if again.Result.Suggestions[0] != "a" {
		t.Error("Get returned a job sharing memory with the store")
	}

	if err := store.Fail(ctx, "job-1", "late"); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("expected ErrAlreadyFinished, got %v", err)
	}
}

func TestMemoryStore_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, created, _ := store.Create(ctx, model.AnalysisJob{ID: "same", RequestID: "r1"})
	if !created {
		t.Fatal("expected first create to succeed")
	}
	_ = store.Fail(ctx, "same", "boom")

	second, created, err := store.Create(ctx, model.AnalysisJob{ID: "same", RequestID: "r2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected duplicate create to return the existing job")
	}
	if second.RequestID != first.RequestID || second.Status != model.JobFailed || second.Error != "boom" {
		t.Errorf("unexpected existing job %+v", second)
	}
	if n := store.Count(ctx); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, _, err := store.Create(ctx, model.AnalysisJob{}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Complete(ctx, "missing", model.Result{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Fail(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := newTestStore(t, WithClock(clock.Now))

	for _, id := range []string{"old-done", "old-failed", "old-pending", "new-done"} {
		_, _, _ = store.Create(ctx, model.AnalysisJob{ID: id})
	}
	_ = store.Complete(ctx, "old-done", model.Result{Score: 50})
	_ = store.Fail(ctx, "old-failed", "x")

	clock.Advance(time.Hour)
	_ = store.Complete(ctx, "new-done", model.Result{Score: 70})

	removed := store.Prune(ctx, clock.Now().Add(-30*time.Minute))
	if removed != 2 {
		t.Errorf("expected 2 pruned, got %d", removed)
	}
	for _, id := range []string{"old-pending", "new-done"} {
		if _, err := store.Get(ctx, id); err != nil {
			t.Errorf("expected %s to survive pruning: %v", id, err)
		}
	}
	if n := store.Count(ctx); n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestMemoryStore_BackgroundPrune(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := newTestStore(t,
		WithClock(clock.Now),
		WithRetention(time.Minute),
		WithPruneInterval(10*time.Millisecond),
	)

	_, _, _ = store.Create(ctx, model.AnalysisJob{ID: "job"})
	_ = store.Complete(ctx, "job", model.Result{})
	clock.Advance(2 * time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for store.Count(ctx) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected background pruning to remove the expired job")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, WithShardCount(4))
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			_, _, _ = store.Create(ctx, model.AnalysisJob{ID: id})
			_, _, _ = store.Create(ctx, model.AnalysisJob{ID: id})
			_ = store.Complete(ctx, id, model.Result{Score: i % 100})
			_, _ = store.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	if c := store.Count(ctx); c != n {
		t.Errorf("expected %d jobs, got %d", n, c)
	}
	for i := 0; i < n; i++ {
		j, err := store.Get(ctx, fmt.Sprintf("job-%d", i))
		if err != nil || j.Status != model.JobCompleted {
			t.Errorf("job-%d: status %s err %v", i, j.Status, err)
		}
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(context.Background())
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, _, err := store.Create(ctx, model.AnalysisJob{ID: "job-del"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Delete(ctx, "job-del")
	store.Delete(ctx, "never-existed")

	if _, err := store.Get(ctx, "job-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if n := store.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
}
