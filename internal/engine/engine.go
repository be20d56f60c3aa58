// Package engine provides the core logic for reorganizing a project tree.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level operations. It runs the pipeline stages strictly in order and
// owns the decision of which failures are fatal and which are warnings.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Plan: Validation and preflight without touching the tree
//   - Reorganize: Backup, relocation, reference rewriting, config patching
//   - Verify: Postcondition checks on an already reorganized tree
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/planner"
	"github.com/godot-reorg/reorg/internal/progress"
	"github.com/godot-reorg/reorg/internal/rewrite"
)

// Engine orchestrates all reorganization operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	hasher   hash.Hasher
	clock    clock.Clock
	logger   *slog.Logger
	reporter progress.Reporter
}

// New creates a new Engine with the given dependencies. A nil logger or
// reporter discards its output.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	logger *slog.Logger,
	reporter progress.Reporter,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Engine{
		fs:       fs,
		hasher:   hasher,
		clock:    clk,
		logger:   logger,
		reporter: reporter,
	}
}

// prepared is everything derived from a manifest before the tree is touched.
type prepared struct {
	plan *planner.MovePlan
	set  *rewrite.ReplacementSet
}

// prepare validates the manifest and its replacement rules, then builds the
// move plan for root.
func (e *Engine) prepare(ctx context.Context, root string, m *manifest.Manifest, force bool) (*prepared, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no manifest", ErrValidation)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	set := rewrite.NewReplacementSet(m)
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := e.checkRoot(root); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := planner.BuildMovePlan(m, root, e.fs, force)
	if err != nil {
		return nil, fmt.Errorf("failed to build move plan: %w", err)
	}

	e.logger.Debug("plan built",
		slog.String("root", root),
		slog.Int("operations", len(plan.Operations)),
		slog.Int("warnings", len(plan.Warnings)),
		slog.Int("conflicts", len(plan.Conflicts)),
		slog.Int("rules", set.Len()),
	)
	return &prepared{plan: plan, set: set}, nil
}

func (e *Engine) checkRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: project root not set", ErrValidation)
	}
	info, err := e.fs.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: project root %s", ErrNotFound, root)
	}
	if err != nil {
		return fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: project root %s is not a directory", ErrValidation, root)
	}
	return nil
}

// executeOperation executes a single operation.
func (e *Engine) executeOperation(op planner.Operation) error {
	switch op.Type {
	case planner.OpMkdir:
		return e.executeMkdir(op)
	case planner.OpMove:
		return e.executeMove(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// executeMkdir creates a directory and its parents.
func (e *Engine) executeMkdir(op planner.Operation) error {
	if err := e.fs.MkdirAll(op.DestPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", op.RelDest, err)
	}
	return nil
}

// executeMove renames a file into place.
func (e *Engine) executeMove(op planner.Operation) error {
	if err := e.fs.MkdirAll(filepath.Dir(op.DestPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := e.fs.Rename(op.SourcePath, op.DestPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", op.RelSource, op.RelDest, err)
	}
	return nil
}
