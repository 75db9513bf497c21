package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
	"github.com/gcbaptista/go-word-finder/internal/logging"
	"github.com/gcbaptista/go-word-finder/model"
)

// JobFunc is the work a job performs. The returned value becomes the job's
// result when err is nil.
type JobFunc func(ctx context.Context, job *model.Job) (interface{}, error)

// Manager handles background job execution and tracking
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	cancels   map[string]context.CancelFunc
	workers   chan struct{} // Limits concurrent jobs
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	metrics   *JobMetrics
	retention time.Duration
	logger    *zap.Logger
}

// NewManager creates a new job manager with specified worker count.
// Finished jobs older than retention are removed by the cleanup routine.
func NewManager(maxWorkers int, retention time.Duration, logger *zap.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Manager{
		jobs:      make(map[string]*model.Job),
		cancels:   make(map[string]context.CancelFunc),
		workers:   make(chan struct{}, maxWorkers),
		stopChan:  make(chan struct{}),
		metrics:   NewJobMetrics(),
		retention: retention,
		logger:    logging.OrNop(logger).Named("jobs"),
	}
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	m.logger.Info("job manager started", zap.Int("max_workers", cap(m.workers)))

	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to finish
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, cancel := range m.cancels {
			cancel()
		}
		m.mu.Unlock()

		m.wg.Wait()
		m.logger.Info("job manager stopped")
	})
}

// CreateJob creates a new job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, root string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Root:      root,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("job created", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.String("root", root))
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, internalErrors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns all jobs, optionally filtered by status, newest first
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sortNewestFirst(result)
	return result
}

// ExecuteJob runs a pending job in a goroutine once a worker slot is free.
// It returns immediately; the job stays pending until a slot is acquired.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return internalErrors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	select {
	case <-m.stopChan:
		m.mu.Unlock()
		m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[jobID] = cancel
	jobType := job.Type
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer func() {
			cancel()
			m.mu.Lock()
			delete(m.cancels, jobID)
			m.mu.Unlock()
		}()

		// Acquire worker slot
		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			m.updateJobStatus(jobID, model.JobStatusCancelled, "Job cancelled before start")
			m.metrics.RecordJobCancelled(jobType)
			return
		}
		defer func() { <-m.workers }()

		snapshot, ok := m.markRunning(jobID)
		if !ok {
			return
		}

		startTime := time.Now()
		result, err := jobFunc(ctx, snapshot)
		executionTime := time.Since(startTime)

		switch {
		case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
			m.updateJobStatus(jobID, model.JobStatusCancelled, "Job cancelled")
			m.metrics.RecordJobCancelled(jobType)
			m.logger.Info("job cancelled", zap.String("job_id", jobID), zap.Duration("after", executionTime))
		case err != nil:
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.metrics.RecordJobFailed(jobType)
			m.logger.Warn("job failed", zap.String("job_id", jobID), zap.Duration("after", executionTime), zap.Error(err))
		default:
			m.setJobResult(jobID, result)
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.metrics.RecordJobCompleted(jobType, executionTime)
			m.logger.Info("job completed", zap.String("job_id", jobID), zap.Duration("took", executionTime))
		}
	}()

	return nil
}

// CancelJob requests cancellation of a pending or running job
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return internalErrors.NewJobNotFoundError(jobID)
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job with ID '%s' already finished (status: %s)", jobID, job.Status)
	}

	if cancel, ok := m.cancels[jobID]; ok {
		oldStatus := job.Status
		job.Status = model.JobStatusCancelling
		m.metrics.RecordJobStatusChange(oldStatus, job.Status)
		cancel()
		return nil
	}

	// Never handed to ExecuteJob
	oldStatus := job.Status
	job.Status = model.JobStatusCancelled
	now := time.Now()
	job.CompletedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, job.Status)
	m.metrics.RecordJobCancelled(job.Type)
	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}

	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// markRunning moves a pending job to running and returns a snapshot for the job function
func (m *Manager) markRunning(jobID string) (*model.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, false
	}
	if job.Status == model.JobStatusCancelling {
		job.Status = model.JobStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		m.metrics.RecordJobStatusChange(model.JobStatusCancelling, job.Status)
		m.metrics.RecordJobCancelled(job.Type)
		return nil, false
	}
	if job.Status != model.JobStatusPending {
		return nil, false
	}

	oldStatus := job.Status
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, job.Status)
	return copyJob(job), true
}

func (m *Manager) setJobResult(jobID string, result interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.Result = result
	}
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	if status.IsTerminal() {
		now := time.Now()
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	interval := m.retention / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retention)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than the specified duration
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of currently active jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}

func sortNewestFirst(jobs []*model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}
