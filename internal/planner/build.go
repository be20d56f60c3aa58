package planner

import (
	"fmt"

	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/progress"
)

// BuildMovePlan inspects the tree at root and builds the plan for m.
//
// Directories come first, in Manifest.Directories order, followed by one
// move per manifest entry whose source exists. Missing sources are recorded
// as warnings; everything that would make a move fail or clobber data is
// recorded as a conflict. The tree is never modified.
func BuildMovePlan(m *manifest.Manifest, root string, fsys fsops.FS, force bool) (*MovePlan, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	plan := NewMovePlan(root)
	checker := NewConflictChecker(fsys, root, force)

	for _, dir := range m.Directories() {
		if conflict := checker.CheckDir(dir); conflict != nil {
			plan.AddConflict(*conflict)
			continue
		}
		plan.AddOperation(Operation{
			Type:     OpMkdir,
			DestPath: fsops.Resolve(root, dir),
			RelDest:  dir,
		})
	}

	for _, mv := range m.Moves {
		exists, conflict := checker.CheckSource(mv.From)
		if conflict != nil {
			plan.AddConflict(*conflict)
			continue
		}
		if !exists {
			plan.AddWarning(missingSource(fsys, root, mv))
			continue
		}
		if conflict := checker.CheckMove(mv.To); conflict != nil {
			plan.AddConflict(*conflict)
			continue
		}
		plan.AddOperation(Operation{
			Type:       OpMove,
			SourcePath: fsops.Resolve(root, mv.From),
			DestPath:   fsops.Resolve(root, mv.To),
			RelSource:  mv.From,
			RelDest:    mv.To,
		})
	}

	return plan, nil
}

// missingSource builds the warning for a source that is not in the tree.
// A destination that is already in place usually means an earlier run got
// this far, so the message says so.
func missingSource(fsys fsops.FS, root string, mv manifest.Move) progress.Warning {
	msg := "not found, skipping"
	_, exists, err := lstat(fsys, fsops.Resolve(root, mv.To))
	switch {
	case err != nil:
		msg = fmt.Sprintf("not found, skipping (cannot check %s: %v)", mv.To, err)
	case exists:
		msg = fmt.Sprintf("not found, skipping (%s already exists)", mv.To)
	}
	return progress.Warning{Stage: progress.StageMove, Path: mv.From, Message: msg}
}
