// Package testing provides utilities and helpers for testing the word finder.
package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/engine"
	"github.com/gcbaptista/go-word-finder/model"
	"github.com/gcbaptista/go-word-finder/services"
)

// WriteTree creates files below a fresh temporary directory and returns it.
// Keys are slash separated paths relative to the root; parent directories are
// created as needed. A key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755), "Failed to create directory %s", name)
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create parent of %s", name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return root
}

// SampleTree is a small corpus used across packages. Walk order is
// a.txt, docs/guide.txt, docs/notes.txt, z.txt.
func SampleTree() map[string]string {
	return map[string]string{
		"a.txt":          "alpha beta\n",
		"docs/guide.txt": "beta gamma\ndelta\n",
		"docs/notes.txt": "alpha\n\n  gamma  delta beta\n",
		"z.txt":          "omega\n",
	}
}

// CreateTestEngine creates an engine with default settings, adjusted by
// tweak when non-nil. The engine is stopped when the test ends.
func CreateTestEngine(t *testing.T, tweak func(*config.Settings)) *engine.Engine {
	t.Helper()
	settings := config.Default()
	if tweak != nil {
		tweak(&settings)
	}

	eng := engine.NewEngine(settings, nil)
	t.Cleanup(eng.Stop)
	return eng
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed successfully in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended with status %s: %s", jobID, job.Status, job.Error)
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d - %s", jobID, job.Progress.Current, job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedRoot string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedRoot, job.Root, "Job root should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// FindTestCase represents a test case for find operations
type FindTestCase struct {
	Name         string
	Words        []string
	ExpectFound  bool
	ExpectedPath string // Slash separated, relative to the root
	ValidateFunc func(t *testing.T, result *services.FindResult)
}

// RunFindTests runs a suite of finds against root
func RunFindTests(t *testing.T, finder services.WordFinder, root string, tests []FindTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := finder.Find(t.Context(), services.FindQuery{Root: root, Words: tt.Words})
			require.NoError(t, err, "Find should not fail")

			assert.Equal(t, tt.ExpectFound, result.Found, "Found should match")
			assert.Equal(t, tt.ExpectedPath, result.RelPath, "Qualifying file should match")
			if tt.ExpectFound {
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.ExpectedPath)), result.Path)
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}
