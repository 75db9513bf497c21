package api

import (
	"os"
	"path/filepath"
	"strings"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
)

// RootGuard confines search roots to a fixed set of directories. Paths are
// compared after resolving symbolic links, so a link inside an allowed
// directory cannot point a search outside it.
type RootGuard struct {
	allowed []string
}

// NewRootGuard resolves each allowed directory once. A guard with no allowed
// directories rejects every root.
func NewRootGuard(allowed []string) *RootGuard {
	g := &RootGuard{allowed: make([]string, 0, len(allowed))}
	for _, dir := range allowed {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		g.allowed = append(g.allowed, resolvePath(dir))
	}
	return g
}

// Check returns an *errors.InvalidPathError when root lies outside every
// allowed directory.
func (g *RootGuard) Check(root string) error {
	resolved := resolvePath(root)
	for _, dir := range g.allowed {
		if within(dir, resolved) {
			return nil
		}
	}
	return internalErrors.NewInvalidPathError(root, "outside the allowed roots")
}

// resolvePath returns the absolute, symlink free form of p. A path that does
// not exist keeps its cleaned absolute form; the engine reports it later.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
