package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/gcbaptista/go-word-finder/internal/finder"
	"github.com/gcbaptista/go-word-finder/internal/jobs"
	"github.com/gcbaptista/go-word-finder/model"
	"github.com/gcbaptista/go-word-finder/services"
)

// FindAsync starts a find in the background and returns its job ID. The root
// is validated before the job is created. The completed job's Result holds a
// *services.FindResult.
func (e *Engine) FindAsync(query services.FindQuery) (string, error) {
	if _, err := finder.ValidateRoot(query.Root); err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypeFind, query.Root, map[string]string{
		"operation": "find",
		"words":     strings.Join(query.Words, ","),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) (interface{}, error) {
		return e.executeFindJob(ctx, query, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start find job: %w", err)
	}

	return jobID, nil
}

// executeFindJob runs the find and reports each scanned file as job progress.
func (e *Engine) executeFindJob(ctx context.Context, query services.FindQuery, jobID string) (*services.FindResult, error) {
	progress := func(p finder.Progress) {
		e.jobManager.UpdateJobProgress(jobID, p.FilesScanned, 0,
			fmt.Sprintf("scanned %d files, last: %s", p.FilesScanned, p.Current))
	}

	result, err := e.runFind(ctx, query, modeAsync, progress)
	if err != nil {
		return nil, err
	}

	message := "no file contains every word"
	if result.Found {
		message = "found " + result.Path
	}
	e.jobManager.UpdateJobProgress(jobID, result.Stats.FilesScanned, result.Stats.FilesScanned, message)
	return result, nil
}

// GetJob retrieves a job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns all jobs, optionally filtered by status.
func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(status)
}

// CancelJob requests cancellation of a pending or running job.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}

// GetJobMetrics returns job performance metrics.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}

// GetJobSuccessRate returns the job success rate.
func (e *Engine) GetJobSuccessRate() float64 {
	return e.jobManager.GetJobSuccessRate()
}

// GetCurrentWorkload returns the number of active jobs.
func (e *Engine) GetCurrentWorkload() int64 {
	return e.jobManager.GetCurrentWorkload()
}
