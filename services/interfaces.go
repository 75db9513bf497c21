package services

import (
	"context"

	"github.com/gcbaptista/go-word-finder/internal/finder"
	"github.com/gcbaptista/go-word-finder/model"
)

// FindQuery describes one search for a file containing every target word.
// Zero-valued options fall back to the configured search settings.
type FindQuery struct {
	Root         string   `json:"root"`
	Words        []string `json:"words"`
	ExcludeDirs  []string `json:"exclude_dirs,omitempty"`   // Added to the configured exclusions
	SkipHidden   *bool    `json:"skip_hidden,omitempty"`    // Optional: override the configured hidden-entry policy
	MaxLineBytes int      `json:"max_line_bytes,omitempty"` // Optional: override the configured line bound
}

// FindResult is a finder.Result tagged with the query it answers.
type FindResult struct {
	finder.Result
	Root    string `json:"root"`
	QueryID string `json:"query_id"` // unique UUID for this find
}

// TreeQuery describes a tree listing request.
type TreeQuery struct {
	Root      string `json:"root"`
	Separator string `json:"sep,omitempty"`
}

// WordFinder runs finds and tree listings.
type WordFinder interface {
	Find(ctx context.Context, query FindQuery) (*FindResult, error)
	Tree(query TreeQuery) (string, error)
}

// JobManager runs finds in the background and tracks them.
type JobManager interface {
	FindAsync(query FindQuery) (string, error)
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	CancelJob(jobID string) error
}
