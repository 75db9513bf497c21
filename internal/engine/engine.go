// Package engine ties the finder to configuration, background jobs, analytics
// and metrics. It implements services.WordFinder and services.JobManager.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/analytics"
	"github.com/gcbaptista/go-word-finder/internal/finder"
	"github.com/gcbaptista/go-word-finder/internal/jobs"
	"github.com/gcbaptista/go-word-finder/internal/logging"
	"github.com/gcbaptista/go-word-finder/internal/metrics"
	"github.com/gcbaptista/go-word-finder/model"
	"github.com/gcbaptista/go-word-finder/services"
)

const (
	modeSync  = "sync"
	modeAsync = "async"
)

var (
	_ services.WordFinder = (*Engine)(nil)
	_ services.JobManager = (*Engine)(nil)
)

// Engine runs finds against the local file system.
type Engine struct {
	settings   config.Settings
	logger     *zap.Logger
	jobManager *jobs.Manager
	analytics  *analytics.Service
	metrics    *metrics.Metrics
}

// NewEngine creates an engine and starts its job manager. Call Stop to
// cancel background finds.
func NewEngine(settings config.Settings, logger *zap.Logger) *Engine {
	settings.ApplyDefaults()
	logger = logging.OrNop(logger)

	e := &Engine{
		settings:   settings,
		logger:     logger.Named("engine"),
		jobManager: jobs.NewManager(settings.Server.MaxWorkers, settings.Server.JobRetention, logger),
		analytics:  analytics.NewService(logger),
		metrics:    metrics.New(),
	}
	e.metrics.TrackActiveJobs(e.jobManager.GetCurrentWorkload)
	e.jobManager.Start()
	return e
}

// Stop cancels running finds and waits for them to return.
func (e *Engine) Stop() {
	e.jobManager.Stop()
}

// Settings returns the engine's effective settings.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Analytics returns the analytics service recording every find.
func (e *Engine) Analytics() *analytics.Service {
	return e.analytics
}

// Metrics returns the Prometheus collectors updated by every find.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Find searches query.Root for the first file containing every query word.
func (e *Engine) Find(ctx context.Context, query services.FindQuery) (*services.FindResult, error) {
	return e.runFind(ctx, query, modeSync, nil)
}

// Tree renders the directory tree below query.Root.
func (e *Engine) Tree(query services.TreeQuery) (string, error) {
	sep := query.Separator
	if sep == "" {
		sep = finder.DefaultTreeSeparator
	}

	var b strings.Builder
	opts := e.finderOptions(services.FindQuery{Root: query.Root})
	if err := finder.PrintTreeDir(&b, query.Root, sep, opts...); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e *Engine) runFind(ctx context.Context, query services.FindQuery, mode string, progress func(finder.Progress)) (*services.FindResult, error) {
	queryID := uuid.New().String()
	logger := e.logger.With(zap.String("query_id", queryID), zap.String("root", query.Root))

	opts := e.finderOptions(query)
	opts = append(opts, finder.WithLogger(logger))
	if progress != nil {
		opts = append(opts, finder.WithProgress(progress))
	}

	start := time.Now()
	res, err := finder.SearchDir(ctx, query.Root, query.Words, opts...)
	if err != nil {
		e.metrics.ObserveFind(mode, false, err, time.Since(start), 0, 0, 0)
		logger.Warn("find failed", zap.Error(err))
		return nil, err
	}

	e.metrics.ObserveFind(mode, res.Found, nil, res.Took,
		res.Stats.FilesScanned, res.Stats.FilesSkipped, res.Stats.TokensRead)
	e.analytics.TrackFindEvent(model.FindEvent{
		Root:         query.Root,
		Words:        res.Words,
		Found:        res.Found,
		Mode:         mode,
		Duration:     res.Took,
		FilesScanned: res.Stats.FilesScanned,
		TokensRead:   res.Stats.TokensRead,
		FilesSkipped: res.Stats.FilesSkipped,
	})
	logger.Info("find finished",
		zap.Bool("found", res.Found),
		zap.String("path", res.Path),
		zap.Int("files_scanned", res.Stats.FilesScanned),
		zap.Duration("took", res.Took))

	return &services.FindResult{Result: *res, Root: query.Root, QueryID: queryID}, nil
}

// finderOptions merges per-query overrides with the configured search settings.
func (e *Engine) finderOptions(query services.FindQuery) []finder.Option {
	search := e.settings.Search

	maxLineBytes := search.MaxLineBytes
	if query.MaxLineBytes > 0 {
		maxLineBytes = query.MaxLineBytes
	}
	skipHidden := search.SkipHidden
	if query.SkipHidden != nil {
		skipHidden = *query.SkipHidden
	}

	return []finder.Option{
		finder.WithLogger(e.logger),
		finder.WithMaxLineBytes(maxLineBytes),
		finder.WithExcludeDirs(search.ExcludeDirs...),
		finder.WithExcludeDirs(query.ExcludeDirs...),
		finder.WithSkipHidden(skipHidden),
	}
}
