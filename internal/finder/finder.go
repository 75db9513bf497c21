// Package finder searches a directory tree for a file that contains every word
// of a target word list.
//
// The tree is walked depth first in directory listing order. Each file's words
// are streamed through a tokenizer.Sequencer into a single tracker.Tracker that
// is shared by the whole walk and reset between files. The walk stops at the
// first file that completes the tracker.
package finder

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
	"github.com/gcbaptista/go-word-finder/internal/logging"
	"github.com/gcbaptista/go-word-finder/internal/tokenizer"
	"github.com/gcbaptista/go-word-finder/internal/tracker"
)

// SkippedEntry describes a file or directory the search could not read.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Stats counts the work done by one search.
type Stats struct {
	FilesScanned int `json:"files_scanned"`
	DirsVisited  int `json:"dirs_visited"`
	TokensRead   int `json:"tokens_read"`
	FilesSkipped int `json:"files_skipped"`
}

// Progress is reported after every file the search opens.
type Progress struct {
	Stats
	Current string `json:"current"`
}

// PartialMatch describes the file that came closest to qualifying.
type PartialMatch struct {
	Path    string   `json:"path"`
	RelPath string   `json:"rel_path"`
	Matched int      `json:"matched"` // Distinct target words the file contains
	Total   int      `json:"total"`   // Distinct target words searched for
	Missing []string `json:"missing"` // Target words the file lacks, sorted
}

// Result is the outcome of a search. Not finding a file is a normal result,
// not an error.
type Result struct {
	Found   bool           `json:"found"`
	Path    string         `json:"path,omitempty"`     // Qualifying file, joined onto the search root
	RelPath string         `json:"rel_path,omitempty"` // Qualifying file relative to the search root, slash separated
	Words   []string       `json:"words"`              // Distinct target words in sorted order
	Stats   Stats          `json:"stats"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	Closest *PartialMatch  `json:"closest,omitempty"` // Set only when nothing qualifies
	Took    time.Duration  `json:"took_ns"`
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger used to report skipped entries.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = logging.OrNop(logger)
	}
}

// WithMaxLineBytes bounds the line buffer used for every file.
func WithMaxLineBytes(n int) Option {
	return func(f *Finder) {
		f.maxLineBytes = n
	}
}

// WithExcludeDirs names directories (by base name) that are never descended into.
func WithExcludeDirs(names ...string) Option {
	return func(f *Finder) {
		for _, name := range names {
			f.excludeDirs[name] = true
		}
	}
}

// WithSkipHidden skips every file and directory whose name starts with ".".
func WithSkipHidden(skip bool) Option {
	return func(f *Finder) {
		f.skipHidden = skip
	}
}

// WithProgress registers a callback invoked after each opened file.
func WithProgress(fn func(Progress)) Option {
	return func(f *Finder) {
		f.progress = fn
	}
}

// WithRoot sets the path reported results are joined onto.
func WithRoot(root string) Option {
	return func(f *Finder) {
		f.root = root
	}
}

// Finder walks one file system. A Finder holds no per-search state and may be
// reused for several sequential or concurrent searches.
type Finder struct {
	fsys         fs.FS
	root         string
	logger       *zap.Logger
	maxLineBytes int
	excludeDirs  map[string]bool
	skipHidden   bool
	progress     func(Progress)
}

// New creates a Finder over fsys. The walk starts at fsys's "." directory.
func New(fsys fs.FS, opts ...Option) *Finder {
	f := &Finder{
		fsys:         fsys,
		logger:       zap.NewNop(),
		maxLineBytes: tokenizer.DefaultMaxLineBytes,
		excludeDirs:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SearchDir searches the directory tree rooted at root on the local file
// system. root must exist and be a directory; otherwise an
// *errors.InvalidPathError is returned before any file is read.
func SearchDir(ctx context.Context, root string, words []string, opts ...Option) (*Result, error) {
	absRoot, err := ValidateRoot(root)
	if err != nil {
		return nil, err
	}
	f := New(os.DirFS(absRoot), append([]Option{WithRoot(absRoot)}, opts...)...)
	return f.Search(ctx, words)
}

// ValidateRoot checks that root is an existing directory and returns its
// absolute form.
func ValidateRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", internalErrors.NewInvalidPathError(root, "path is empty")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", internalErrors.NewInvalidPathError(root, err.Error())
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", internalErrors.NewInvalidPathError(root, "does not exist")
		}
		return "", internalErrors.NewInvalidPathError(root, err.Error())
	}
	if !info.IsDir() {
		return "", internalErrors.NewInvalidPathError(root, "not a directory")
	}
	return absRoot, nil
}

// Search looks for the first file, in walk order, whose words include every
// entry of words. With an empty word list the first readable file qualifies.
// Unreadable files and directories below the root are skipped and recorded in
// the result; an unreadable root is an error. Cancelling ctx stops the walk
// between entries.
func (f *Finder) Search(ctx context.Context, words []string) (*Result, error) {
	start := time.Now()
	tr := tracker.New(words)
	result := &Result{Words: tr.Words()}

	rel, found, err := f.searchDir(ctx, ".", tr, result)
	result.Took = time.Since(start)
	if err != nil {
		return nil, err
	}

	if found {
		result.Closest = nil
		result.Found = true
		result.RelPath = rel
		result.Path = f.displayPath(rel)
		f.logger.Debug("qualifying file found",
			zap.String("path", result.Path),
			zap.Int("files_scanned", result.Stats.FilesScanned))
	}
	return result, nil
}

// searchDir walks dir with the shared tracker and reports the first
// qualifying file below it.
func (f *Finder) searchDir(ctx context.Context, dir string, tr *tracker.Tracker, result *Result) (string, bool, error) {
	entries, err := fs.ReadDir(f.fsys, dir)
	if err != nil {
		if dir == "." {
			return "", false, internalErrors.NewInvalidPathError(f.displayPath(dir), err.Error())
		}
		f.skip(result, dir, err)
		return "", false, nil
	}
	result.Stats.DirsVisited++

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		name := entry.Name()
		if f.skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		entryPath := path.Join(dir, name)

		switch {
		case entry.IsDir():
			if f.excludeDirs[name] {
				continue
			}
			found, ok, err := f.searchDir(ctx, entryPath, tr, result)
			if err != nil || ok {
				return found, ok, err
			}
		case f.isFile(entry, entryPath):
			if f.scanFile(entryPath, tr, result) {
				return entryPath, true, nil
			}
		}
	}
	return "", false, nil
}

// isFile reports whether entry is a regular file. Symbolic links count when
// they resolve to a regular file; links to directories are never followed.
func (f *Finder) isFile(entry fs.DirEntry, name string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fs.Stat(f.fsys, name)
	return err == nil && info.Mode().IsRegular()
}

// scanFile streams name through the tracker and reports whether it qualifies.
// The tracker is reset when it does not. A file whose read fails midway is
// counted as skipped, not scanned.
func (f *Finder) scanFile(name string, tr *tracker.Tracker, result *Result) bool {
	seq, err := tokenizer.Open(f.fsys, name, tokenizer.WithMaxLineBytes(f.maxLineBytes))
	if err != nil {
		f.skip(result, name, err)
		return false
	}
	defer func() {
		result.Stats.TokensRead += seq.Count()
		_ = seq.Close()
		f.reportProgress(result, name)
	}()

	if tr.EncounteredAll() {
		result.Stats.FilesScanned++
		return true
	}
	for {
		token, ok := seq.Next()
		if !ok {
			break
		}
		if tr.Encounter(token) && tr.EncounteredAll() {
			result.Stats.FilesScanned++
			return true
		}
	}

	if err := seq.Err(); err != nil {
		f.skip(result, name, err)
	} else {
		result.Stats.FilesScanned++
		f.recordClosest(result, name, tr)
	}
	tr.Reset()
	return false
}

// recordClosest keeps the fully read file that matched the most target words.
// Ties go to the file met first.
func (f *Finder) recordClosest(result *Result, name string, tr *tracker.Tracker) {
	matched := tr.SeenCount()
	if matched == 0 || (result.Closest != nil && matched <= result.Closest.Matched) {
		return
	}
	result.Closest = &PartialMatch{
		Path:    f.displayPath(name),
		RelPath: name,
		Matched: matched,
		Total:   tr.Len(),
		Missing: tr.Missing(),
	}
}

func (f *Finder) skip(result *Result, name string, err error) {
	display := f.displayPath(name)
	result.Stats.FilesSkipped++
	result.Skipped = append(result.Skipped, SkippedEntry{Path: display, Reason: err.Error()})
	f.logger.Warn("skipping unreadable entry", zap.String("path", display), zap.Error(err))
}

func (f *Finder) reportProgress(result *Result, name string) {
	if f.progress == nil {
		return
	}
	f.progress(Progress{Stats: result.Stats, Current: f.displayPath(name)})
}

// displayPath joins a slash separated fs path onto the configured root.
func (f *Finder) displayPath(name string) string {
	if f.root == "" {
		return name
	}
	return filepath.Join(f.root, filepath.FromSlash(name))
}
