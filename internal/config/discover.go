package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectMarker is the file that marks a project root.
const ProjectMarker = "project.godot"

// ErrNoProject is returned when no project root is found.
var ErrNoProject = errors.New("not inside a Godot project")

// DiscoverRoot finds the project root by walking up from cwd looking for
// ProjectMarker.
func DiscoverRoot(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		if info, err := os.Stat(filepath.Join(current, ProjectMarker)); err == nil && info.Mode().IsRegular() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root directory
			return "", fmt.Errorf("%w (no %s in %s or any parent)", ErrNoProject, ProjectMarker, absPath)
		}
		current = parent
	}
}

// ResolveRoot returns root made absolute when set, and the discovered root
// from cwd otherwise.
func ResolveRoot(root, cwd string) (string, error) {
	if root == "" {
		return DiscoverRoot(cwd)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}
