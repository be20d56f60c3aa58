package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"syscall"

	"github.com/godot-reorg/reorg/internal/fsops"
)

// ConflictChecker checks for conflicts before any file is moved.
type ConflictChecker struct {
	fs    fsops.FS
	root  string
	force bool
}

// NewConflictChecker creates a new ConflictChecker rooted at root.
func NewConflictChecker(fs fsops.FS, root string, force bool) *ConflictChecker {
	return &ConflictChecker{
		fs:    fs,
		root:  root,
		force: force,
	}
}

// lstat is Lstat that treats a file standing in for an ancestor directory
// as "does not exist". CheckDir reports that case on its own.
func lstat(fsys fsops.FS, p string) (os.FileInfo, bool, error) {
	info, err := fsys.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// CheckSource inspects a manifest source. It reports whether the source
// exists, and a Conflict if it exists but cannot be moved as a file.
func (c *ConflictChecker) CheckSource(rel string) (bool, *Conflict) {
	info, exists, err := lstat(c.fs, fsops.Resolve(c.root, rel))
	if err != nil {
		return false, &Conflict{
			Path:     rel,
			Reason:   fmt.Sprintf("Failed to stat source: %v", err),
			Existing: "unknown",
			Incoming: "file",
		}
	}
	if !exists {
		return false, nil
	}
	if info.IsDir() {
		return true, &Conflict{
			Path:     rel,
			Reason:   "Source is a directory, only files can be moved",
			Existing: "directory",
			Incoming: "file",
		}
	}
	return true, nil
}

// CheckMove checks the destination of a move.
// Returns a Conflict if one is detected, or nil if the path is safe to use.
func (c *ConflictChecker) CheckMove(rel string) *Conflict {
	info, exists, err := lstat(c.fs, fsops.Resolve(c.root, rel))
	if err != nil {
		return &Conflict{
			Path:     rel,
			Reason:   fmt.Sprintf("Failed to check path: %v", err),
			Existing: "unknown",
			Incoming: "file",
		}
	}
	if !exists {
		return nil
	}

	// A directory is never replaced, even with force
	if info.IsDir() {
		return &Conflict{
			Path:     rel,
			Reason:   "Directory exists at destination",
			Existing: "directory",
			Incoming: "file",
		}
	}

	if c.force {
		return nil
	}
	return &Conflict{
		Path:     rel,
		Reason:   "File exists at destination",
		Existing: "file",
		Incoming: "file",
	}
}

// CheckDir checks that rel and each of its ancestors is either missing or a
// directory. It returns the first offending path.
func (c *ConflictChecker) CheckDir(rel string) *Conflict {
	var chain []string
	for p := rel; p != "." && p != "/"; p = path.Dir(p) {
		chain = append(chain, p)
	}

	// Walk from the top so the report names the outermost blocker
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		info, err := c.fs.Lstat(fsops.Resolve(c.root, p))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return &Conflict{
				Path:     p,
				Reason:   fmt.Sprintf("Failed to check path: %v", err),
				Existing: "unknown",
				Incoming: "directory",
			}
		}
		if !info.IsDir() {
			return &Conflict{
				Path:     p,
				Reason:   "File exists where a directory is needed",
				Existing: "file",
				Incoming: "directory",
			}
		}
	}
	return nil
}
