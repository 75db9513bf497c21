package finder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultTreeSeparator indents one level of the printed tree.
const DefaultTreeSeparator = "  "

// PrintTree writes rootName followed by every entry below the Finder's root,
// one per line. Each entry shows its base name preceded by sep repeated once
// per level of depth, so the root's children carry one sep.
func (f *Finder) PrintTree(w io.Writer, rootName, sep string) error {
	if _, err := fmt.Fprintln(w, rootName); err != nil {
		return err
	}
	return f.printTree(w, ".", sep, 1)
}

func (f *Finder) printTree(w io.Writer, dir, sep string, depth int) error {
	entries, err := fs.ReadDir(f.fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", f.displayPath(dir), err)
	}

	indent := strings.Repeat(sep, depth)
	for _, entry := range entries {
		name := entry.Name()
		if f.skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if _, err := fmt.Fprintln(w, indent+name); err != nil {
			return err
		}
		if entry.IsDir() && !f.excludeDirs[name] {
			if err := f.printTree(w, path.Join(dir, name), sep, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintTreeDir prints the tree rooted at root on the local file system.
func PrintTreeDir(w io.Writer, root, sep string, opts ...Option) error {
	absRoot, err := ValidateRoot(root)
	if err != nil {
		return err
	}
	f := New(os.DirFS(absRoot), append([]Option{WithRoot(absRoot)}, opts...)...)
	return f.PrintTree(w, filepath.Base(absRoot), sep)
}
