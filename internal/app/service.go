// Package service wires the analyzer, job queue, worker pool and job store
// into the operations exposed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caffinecoder/skillnav/internal/adapters/mq/queue"
	"github.com/caffinecoder/skillnav/internal/adapters/mq/worker"
	"github.com/caffinecoder/skillnav/internal/adapters/repository"
	"github.com/caffinecoder/skillnav/internal/advisor"
	"github.com/caffinecoder/skillnav/internal/domain/dedupe"
	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/pkg/logger"
	"github.com/caffinecoder/skillnav/pkg/metrics"
)

// jobNamespace scopes job IDs derived from client request IDs.
var jobNamespace = uuid.MustParse("6f1f3c2e-8a4b-5d7e-9c0a-1b2c3d4e5f60")

// JobID returns the deterministic job ID of requestID submitted by owner.
func JobID(owner, requestID string) string {
	return uuid.NewSHA1(jobNamespace, []byte(owner+"/"+requestID)).String()
}

// Service implements the API dependencies for analyses.
type Service struct {
	mu sync.RWMutex

	analyzer scoring.Scorer
	store    repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool
	cancel   context.CancelFunc

	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int
	retention   time.Duration
	jobTimeout  time.Duration

	started   bool
	startedAt time.Time
	now       func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAnalyzer sets the analyzer used for both sync and async analyses.
func WithAnalyzer(a scoring.Scorer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of job store shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithJobRetention sets how long finished jobs stay readable.
func WithJobRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithJobTimeout bounds the processing of one job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for job timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  100_000,
		shardCount:  8,
		retention:   time.Hour,
		jobTimeout:  time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.analyzer == nil {
		s.analyzer = advisor.New(scoring.NewEngine(), advisor.WithLogger(s.logger))
	}
	return s
}

// Start initializes and starts the async components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewMemoryStore(runCtx,
		repository.WithShardCount(s.shardCount),
		repository.WithRetention(s.retention),
		repository.WithClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.analyzer, s.store,
		worker.WithJobTimeout(s.jobTimeout),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)
	return nil
}

// Stop drains queued jobs and releases background goroutines.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping analysis service")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
	return errors.Join(errs...)
}

// Analyze runs a synchronous analysis.
func (s *Service) Analyze(ctx context.Context, p model.Profile) (model.Result, error) {
	return s.analyzer.Analyze(ctx, p)
}

// Submit stores a pending job for p and queues it. A non-empty requestID
// makes the call idempotent per owner: resubmitting returns the existing job
// with duplicate == true.
func (s *Service) Submit(ctx context.Context, owner, requestID string, p model.Profile) (job model.AnalysisJob, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.AnalysisJob{}, false, ErrNotStarted
	}

	if strings.TrimSpace(p.CareerGoal) == "" {
		metrics.RecordScoringError()
		return model.AnalysisJob{}, false, fmt.Errorf("career_goal is required: %w", scoring.ErrInvalidInput)
	}

	requestID = strings.TrimSpace(requestID)
	id := uuid.NewString()
	key := ""
	if requestID != "" {
		id = JobID(owner, requestID)
		key = owner + "/" + requestID
		if s.deduper.SeenAndRecord(ctx, key) {
			if existing, err := s.store.Get(ctx, id); err == nil {
				metrics.RecordJobDuplicate()
				return existing, true, nil
			}
			// Known key but the job is gone (pruned or rolled back): accept
			// it again under the same ID.
		}
	}

	stored, created, err := s.store.Create(ctx, model.AnalysisJob{
		ID:        id,
		RequestID: requestID,
		Owner:     owner,
		Profile:   p,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.forget(ctx, key)
		return model.AnalysisJob{}, false, fmt.Errorf("create job: %w", err)
	}
	if !created {
		metrics.RecordJobDuplicate()
		return stored, true, nil
	}

	if err := s.queue.Enqueue(ctx, stored); err != nil {
		s.store.Delete(ctx, id)
		s.forget(ctx, key)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return model.AnalysisJob{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return model.AnalysisJob{}, false, err
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job submitted",
		logger.String("id", id),
		logger.String("owner", owner),
		logger.Bool("idempotent", requestID != ""),
	)
	return stored, false, nil
}

func (s *Service) forget(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}

// Get returns the job with id. Errors wrap repository.ErrNotFound for
// unknown IDs.
func (s *Service) Get(ctx context.Context, id string) (model.AnalysisJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.AnalysisJob{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// AIEnabled reports whether analyses may come from the generative model.
func (s *Service) AIEnabled() bool {
	a, ok := s.analyzer.(interface{ AIEnabled() bool })
	return ok && a.AIEnabled()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"aiEnabled":   s.AIEnabled(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		jobs := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["jobsStored"] = jobs
		stats["jobsProcessed"] = s.pool.Processed()
		stats["busyWorkers"] = s.pool.Busy()
		stats["requestIDsTracked"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateJobsStored(jobs)
	}

	return stats
}
