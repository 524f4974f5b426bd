package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/infrastructure/config"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// SyncJobStatus represents the status of a scheduled sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusPartial SyncJobStatus = "PARTIAL"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncJob represents one scheduled order pull for a connection
type SyncJob struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ConnectionID uuid.UUID
	Platform     integration.Platform
	Status       SyncJobStatus
	Error        string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	RetryCount   int
	MaxRetries   int
	NextRetryAt  *time.Time

	// Results from the bulk operation tracking the run
	OperationID uuid.UUID
	TotalItems  int
	Successful  int
	Failed      int
}

// NewSyncJob creates a pending sync job for a connection
func NewSyncJob(conn *integration.PlatformConnection, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:           uuid.New(),
		TenantID:     conn.TenantID,
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		Status:       SyncJobStatusPending,
		MaxRetries:   maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the outcome of the finished bulk operation
func (j *SyncJob) Complete(op *bulk.BulkOperation) {
	now := time.Now()
	j.CompletedAt = &now
	j.OperationID = op.ID
	j.TotalItems = op.TotalItems
	j.Successful = op.SuccessfulItems
	j.Failed = op.FailedItems

	switch op.Status {
	case bulk.OperationStatusCompleted:
		j.Status = SyncJobStatusSuccess
	case bulk.OperationStatusPartial:
		j.Status = SyncJobStatusPartial
	default:
		j.Status = SyncJobStatusFailed
		j.Error = op.FatalError
	}
}

// Fail marks the job as failed without a bulk operation outcome
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// ---------------------------------------------------------------------------
// SyncExecutor Interface
// ---------------------------------------------------------------------------

// SyncExecutor runs one order sync for a connection. The order sync
// application service satisfies this.
type SyncExecutor interface {
	Run(ctx context.Context, tenantID, connectionID uuid.UUID) (*bulk.BulkOperation, error)
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler periodically finds connections due for a pull and runs them
// through a bounded worker pool. Failed jobs retry with exponential backoff;
// a connection never has more than one job queued or running at a time.
type SyncScheduler struct {
	config      config.SchedulerConfig
	connections integration.ConnectionRepository
	executor    SyncExecutor
	logger      *zap.Logger

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  map[uuid.UUID]struct{}

	// recent jobs for monitoring, newest first
	historyMu  sync.RWMutex
	history    []*SyncJob
	maxHistory int
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(cfg config.SchedulerConfig, connections integration.ConnectionRepository, executor SyncExecutor, logger *zap.Logger) (*SyncScheduler, error) {
	if cfg.TickInterval <= 0 || cfg.MaxConcurrent <= 0 || cfg.JobTimeout <= 0 || cfg.RetryAttempts < 0 {
		return nil, ErrInvalidConfig
	}

	return &SyncScheduler{
		config:      cfg,
		connections: connections,
		executor:    executor,
		logger:      logger,
		jobs:        make(chan *SyncJob, 100),
		inFlight:    make(map[uuid.UUID]struct{}),
		history:     make([]*SyncJob, 0, 100),
		maxHistory:  100,
	}, nil
}

// Start starts the tick loop and the worker pool
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrent; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.tickLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.MaxConcurrent),
		zap.Duration("tick_interval", s.config.TickInterval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	// The queue is deliberately left open: retry timers may still fire a
	// send during the drain window, and a closed channel would panic them.
	// Workers exit via context cancellation instead.
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// tickLoop enqueues due connections on every tick
func (s *SyncScheduler) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueDue(ctx)
		}
	}
}

// enqueueDue finds enabled connections past their sync interval and submits
// a job per connection
func (s *SyncScheduler) enqueueDue(ctx context.Context) {
	conns, err := s.connections.FindAllEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to list connections for scheduling", zap.Error(err))
		return
	}

	now := time.Now()
	for i := range conns {
		conn := &conns[i]
		if !conn.SyncDue(now) {
			continue
		}
		if err := s.Submit(NewSyncJob(conn, s.config.RetryAttempts)); err != nil && !errors.Is(err, ErrSyncAlreadyQueued) {
			s.logger.Warn("Failed to submit sync job",
				zap.String("connection_id", conn.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// Submit queues a job unless the connection already has one pending or
// running
func (s *SyncScheduler) Submit(job *SyncJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if _, busy := s.inFlight[job.ConnectionID]; busy {
		s.mu.Unlock()
		return ErrSyncAlreadyQueued
	}
	s.inFlight[job.ConnectionID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("connection_id", job.ConnectionID.String()),
			zap.String("platform", job.Platform.String()),
		)
		return nil
	default:
		s.release(job.ConnectionID)
		return ErrJobQueueFull
	}
}

func (s *SyncScheduler) release(connectionID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, connectionID)
	s.mu.Unlock()
}

// requeueAfter puts a retry job back on the queue once its backoff has
// passed, without tying up a worker. Shutdown cancels the timer and frees
// the connection slot.
func (s *SyncScheduler) requeueAfter(ctx context.Context, job *SyncJob, wait time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.release(job.ConnectionID)
		case <-timer.C:
			select {
			case s.jobs <- job:
			default:
				s.logger.Warn("Failed to re-queue sync job for retry",
					zap.String("job_id", job.ID.String()))
				s.release(job.ConnectionID)
			}
		}
	}()
}

func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	// retries wait out their backoff on a timer, not in the queue
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		s.requeueAfter(ctx, job, time.Until(*job.NextRetryAt))
		return
	}

	job.Start()
	s.logger.Info("Processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("connection_id", job.ConnectionID.String()),
		zap.String("platform", job.Platform.String()),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	op, err := s.executor.Run(jobCtx, job.TenantID, job.ConnectionID)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("connection_id", job.ConnectionID.String()),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			s.requeueAfter(ctx, job, time.Until(*job.NextRetryAt))
			s.addToHistory(job)
			return
		}

		s.release(job.ConnectionID)
		s.addToHistory(job)
		return
	}

	job.Complete(op)
	s.release(job.ConnectionID)
	s.logger.Info("Sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("connection_id", job.ConnectionID.String()),
		zap.String("status", string(job.Status)),
		zap.Int("total_items", job.TotalItems),
		zap.Int("successful", job.Successful),
		zap.Int("failed", job.Failed),
	)
	s.addToHistory(job)
}

func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{job}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// History returns recent jobs, newest first
func (s *SyncScheduler) History(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// HistoryForTenant returns recent jobs of one tenant, newest first
func (s *SyncScheduler) HistoryForTenant(tenantID uuid.UUID, limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*SyncJob, 0, limit)
	for _, job := range s.history {
		if job.TenantID == tenantID {
			result = append(result, job)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result
}
