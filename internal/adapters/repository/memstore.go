package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount            = 8
	defaultRetention             = time.Hour
	defaultPruneInterval         = time.Minute
	defaultMetricsUpdateInterval = 5 * time.Second
)

type shard struct {
	mu   sync.RWMutex
	jobs map[string]*model.AnalysisJob
}

// MemoryStore is an in-memory Store. Jobs are spread over shards by the
// xxhash of their ID so writers to different jobs rarely contend.
type MemoryStore struct {
	shards                []*shard
	shardCount            int
	retention             time.Duration
	pruneInterval         time.Duration
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its background pruning and
// metrics goroutines. They stop when ctx ends or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		shardCount:            defaultShardCount,
		retention:             defaultRetention,
		pruneInterval:         defaultPruneInterval,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{jobs: make(map[string]*model.AnalysisJob)}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	s.every(ctx, s.pruneInterval, func() {
		n := s.Prune(ctx, s.now().Add(-s.retention))
		metrics.RecordJobsPruned(n)
	})
	s.every(ctx, s.metricsUpdateInterval, s.updateMetrics)

	return s
}

func (s *MemoryStore) every(ctx context.Context, interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background goroutines.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) shardFor(id string) *shard {
	return s.shards[xxhash.Sum64String(id)%uint64(len(s.shards))]
}

// copyJob detaches a job from store-owned memory.
func copyJob(j *model.AnalysisJob) model.AnalysisJob {
	out := *j
	if j.Result != nil {
		r := *j.Result
		r.Suggestions = append([]string(nil), j.Result.Suggestions...)
		out.Result = &r
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, job model.AnalysisJob) (model.AnalysisJob, bool, error) { //nolint:gocritic // hugeParam: stored by value
	if job.ID == "" {
		return model.AnalysisJob{}, false, fmt.Errorf("%w: empty id", ErrInvalidJob)
	}
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	sh := s.shardFor(job.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.jobs[job.ID]; ok {
		return copyJob(existing), false, nil
	}
	job.Status = model.JobPending
	job.Result = nil
	job.Error = ""
	job.CompletedAt = nil
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	sh.jobs[job.ID] = &job
	return copyJob(&job), true, nil
}

func (s *MemoryStore) finish(id string, apply func(*model.AnalysisJob)) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	j, ok := sh.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Done() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, id, j.Status)
	}
	now := s.now()
	j.CompletedAt = &now
	apply(j)
	return nil
}

// Complete implements Store.Complete.
func (s *MemoryStore) Complete(_ context.Context, id string, res model.Result) error { //nolint:gocritic // hugeParam: stored by value
	return s.finish(id, func(j *model.AnalysisJob) {
		j.Status = model.JobCompleted
		j.Result = &res
	})
}

// Fail implements Store.Fail.
func (s *MemoryStore) Fail(_ context.Context, id string, reason string) error {
	return s.finish(id, func(j *model.AnalysisJob) {
		j.Status = model.JobFailed
		j.Error = reason
	})
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (model.AnalysisJob, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	j, ok := sh.jobs[id]
	if !ok {
		return model.AnalysisJob{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyJob(j), nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	delete(sh.jobs, id)
	sh.mu.Unlock()
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.jobs)
		sh.mu.RUnlock()
	}
	return total
}

// Prune implements Store.Prune.
func (s *MemoryStore) Prune(_ context.Context, cutoff time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, j := range sh.jobs {
			if j.Done() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
				delete(sh.jobs, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

func (s *MemoryStore) updateMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.jobs)
		sh.mu.RUnlock()
		metrics.UpdateRepositoryRecordsPerShard(i, n)
		total += n
	}
	metrics.UpdateJobsStored(total)
}
