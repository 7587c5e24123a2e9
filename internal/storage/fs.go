package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/filebridge/internal/apperr"
)

// Local implements Provider on top of the local file system.
//
// A Local with an empty root passes every path to the OS as-is. With a root,
// reads are confined to that directory tree.
type Local struct {
	root string // absolute, symlink-free; empty means unrestricted
}

// NewLocal creates a Local provider. root may be empty; otherwise it must
// name an existing directory.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return &Local{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Local{root: abs}, nil
}

// Root returns the confinement root, or "" when unrestricted.
func (l *Local) Root() string {
	return l.root
}

// Read returns the raw bytes of the file at path.
func (l *Local) Read(path string) ([]byte, error) {
	resolved, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

// resolve maps path onto the file system and rejects anything that lands
// outside the root. A path that does not exist is resolved through its
// deepest existing ancestor and left for the OS to report.
func (l *Local) resolve(path string) (string, error) {
	if l.root == "" {
		return path, nil
	}
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrOutsideRoot, path)
	}
	abs = evalExisting(abs)
	if !within(l.root, abs) {
		return "", fmt.Errorf("%w: %s", apperr.ErrOutsideRoot, path)
	}
	return abs, nil
}

// evalExisting resolves symlinks in the longest existing prefix of abs and
// re-joins the missing tail.
func evalExisting(abs string) string {
	var tail []string
	cur := abs
	for {
		if target, err := filepath.EvalSymlinks(cur); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				target = filepath.Join(target, tail[i])
			}
			return target
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// within reports whether abs is root or lies below it. Works for volume
// roots such as "/" and `C:\`.
func within(root, abs string) bool {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
