// Package backup copies a project tree aside before it is reorganized.
//
// Moves are not transactional. If a run fails halfway, the only way back is
// the copy made here, so a backup never overwrites anything and never lives
// inside the tree it protects.
package backup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/fsops"
)

// Suffix is appended to the project directory name to form the default
// backup location.
const Suffix = "-BACKUP"

var (
	// ErrExists is returned when the requested backup directory already exists.
	ErrExists = errors.New("backup directory already exists")

	// ErrInsideRoot is returned when the backup directory is inside the project.
	ErrInsideRoot = errors.New("backup directory is inside the project root")
)

// Manager makes backups.
type Manager struct {
	fs    fsops.FS
	clock clock.Clock
}

// NewManager creates a new Manager.
func NewManager(fs fsops.FS, clk clock.Clock) *Manager {
	return &Manager{fs: fs, clock: clk}
}

// DefaultDir returns the sibling backup directory for root.
func DefaultDir(root string) string {
	root = filepath.Clean(root)
	return filepath.Join(filepath.Dir(root), filepath.Base(root)+Suffix)
}

// Resolve picks the directory a backup of root would be written to. An
// explicit dir is used as given. Otherwise DefaultDir is used, with a
// timestamp appended if a previous backup already occupies it.
func (m *Manager) Resolve(root, dir string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	if dir != "" {
		dir, err = filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := checkOutside(root, dir); err != nil {
			return "", err
		}
		return dir, nil
	}

	dir = DefaultDir(root)
	exists, err := m.fs.Exists(dir)
	if err != nil {
		return "", fmt.Errorf("failed to check backup directory: %w", err)
	}
	if exists {
		dir = dir + "-" + clock.Stamp(m.clock)
	}
	return dir, nil
}

// Snapshot copies the whole tree at root into dir (see Resolve) and returns
// the directory written.
func (m *Manager) Snapshot(root, dir string) (string, error) {
	root = filepath.Clean(root)
	target, err := m.Resolve(root, dir)
	if err != nil {
		return "", err
	}

	exists, err := m.fs.Exists(target)
	if err != nil {
		return "", fmt.Errorf("failed to check backup directory: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrExists, target)
	}

	if err := m.fs.Copy(root, target); err != nil {
		// A partial copy must not be mistaken for a usable backup
		if rmErr := m.fs.RemoveAll(target); rmErr != nil {
			return "", fmt.Errorf("failed to copy project to %s: %w (partial copy left in place: %v)", target, err, rmErr)
		}
		return "", fmt.Errorf("failed to copy project to %s: %w", target, err)
	}
	return target, nil
}

func checkOutside(root, dir string) error {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return fmt.Errorf("failed to compare backup directory with root: %w", err)
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s", ErrInsideRoot, dir)
	}
	return nil
}

// RestoreInstructions lists the manual steps that undo a failed run. With no
// backup dir the steps point at whatever copy the user made themselves.
func RestoreInstructions(root, dir string) []string {
	root = filepath.Clean(root)
	if dir == "" {
		return []string{
			"Close Godot",
			fmt.Sprintf("Delete %s", root),
			fmt.Sprintf("Restore %s from your own backup or version control", filepath.Base(root)),
		}
	}
	return []string{
		"Close Godot",
		fmt.Sprintf("Delete %s", root),
		fmt.Sprintf("Rename %s to %s", dir, root),
	}
}
