package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godot-reorg/reorg/internal/backup"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/planner"
	"github.com/godot-reorg/reorg/internal/progress"
	"github.com/godot-reorg/reorg/internal/rewrite"
	"github.com/godot-reorg/reorg/internal/verify"
)

// collector forwards events and keeps every warning for the result.
type collector struct {
	progress.Reporter
	warnings []progress.Warning
}

func (c *collector) Warn(w progress.Warning) {
	c.warnings = append(c.warnings, w)
	c.Reporter.Warn(w)
}

// Algorithm steps:
// 1. Validate manifest and replacement rules
// 2. Preflight checks (generate plan, check for conflicts)
// 3. Back up the tree (if requested)
// 4. Create directories
// 5. Fingerprint and move files
// 6. Rewrite references in project files
// 7. Patch the config file
// 8. Verify and return result
//
// Nothing is written before step 3. A failure after that leaves the tree
// partially reorganized; the caller is expected to point at the backup.
func (e *Engine) Reorganize(ctx context.Context, req *ReorganizeRequest) (*ReorganizeResult, error) {
	started := e.clock.Now()
	rep := &collector{Reporter: e.reporter}

	rep.Begin(progress.StagePlan)
	p, err := e.prepare(ctx, req.Root, req.Manifest, req.Force)
	if err != nil {
		return nil, err
	}
	m := req.Manifest

	result := &ReorganizeResult{
		Root:      req.Root,
		DryRun:    req.DryRun,
		Plan:      p.plan,
		Created:   []string{},
		Moved:     []planner.Operation{},
		Warnings:  []progress.Warning{},
		StartedAt: started,
	}
	finish := func() *ReorganizeResult {
		result.Warnings = append(result.Warnings, rep.warnings...)
		result.FinishedAt = e.clock.Now()
		return result
	}

	if p.plan.HasConflicts() {
		return finish(), fmt.Errorf("%w: %d conflicts detected", ErrConflict, len(p.plan.Conflicts))
	}
	if req.DryRun {
		result.Warnings = append(result.Warnings, p.plan.Warnings...)
		return finish(), nil
	}

	if req.Backup || req.BackupDir != "" {
		rep.Begin(progress.StageBackup)
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		dir, err := backup.NewManager(e.fs, e.clock).Snapshot(req.Root, req.BackupDir)
		if err != nil {
			return finish(), fmt.Errorf("backup failed: %w", err)
		}
		result.BackupDir = dir
		e.logger.Debug("backup written", slog.String("dir", dir))
	}

	result.Mutated = true
	rep.Begin(progress.StageMkdir)
	for _, op := range p.plan.Operations {
		if op.Type != planner.OpMkdir {
			continue
		}
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if err := e.executeOperation(op); err != nil {
			return finish(), err
		}
		result.Created = append(result.Created, op.RelDest)
		rep.Created(op.RelDest)
	}

	rep.Begin(progress.StageMove)
	moves := p.plan.Moves()
	sources := make([]string, 0, len(moves))
	for _, op := range moves {
		sources = append(sources, op.RelSource)
	}
	before, skipped := hash.Fingerprint(e.hasher, req.Root, sources)

	if err := e.moveFiles(ctx, m, p.plan, rep, result); err != nil {
		return finish(), err
	}

	rep.Begin(progress.StageRewrite)
	rw := rewrite.NewRewriter(e.fs, p.set, m.Include, m.CacheDir, rep, e.logger)
	summary, err := rw.RewriteAll(ctx, req.Root)
	if err != nil {
		return finish(), fmt.Errorf("failed to update references: %w", err)
	}
	result.Rewrite = summary

	rep.Begin(progress.StagePatch)
	if err := ctx.Err(); err != nil {
		return finish(), err
	}
	patch, err := e.patchConfig(req.Root, m, req.TouchConfig, rep)
	if err != nil {
		return finish(), err
	}
	result.Config = patch

	rep.Begin(progress.StageVerify)
	for _, op := range moves {
		if err, ok := skipped[op.RelSource]; ok {
			rep.Warn(progress.Warning{
				Stage:   progress.StageVerify,
				Path:    op.RelSource,
				Message: fmt.Sprintf("content not checked: %v", err),
			})
		}
	}
	touched := make(map[string]bool, len(summary.Files))
	for _, f := range summary.Files {
		touched[f.Path] = true
	}
	checks, err := verify.Verify(e.fs, e.hasher, req.Root, m, before, touched)
	if err != nil {
		return finish(), fmt.Errorf("failed to verify: %w", err)
	}
	result.Verify = checks
	reportChecks(rep, checks)

	return finish(), nil
}

// moveFiles executes the move operations in manifest order. Sources the plan
// found missing are reported inline, at the position they appear in the
// manifest.
func (e *Engine) moveFiles(ctx context.Context, m *manifest.Manifest, plan *planner.MovePlan, rep progress.Reporter, result *ReorganizeResult) error {
	ops := make(map[string]planner.Operation)
	for _, op := range plan.Moves() {
		ops[op.RelSource] = op
	}
	warnings := make(map[string]progress.Warning)
	for _, w := range plan.Warnings {
		warnings[w.Path] = w
	}

	for _, mv := range m.Moves {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w, ok := warnings[mv.From]; ok {
			rep.Warn(w)
			continue
		}
		op, ok := ops[mv.From]
		if !ok {
			continue
		}

		// The tree may have changed since planning
		exists, err := e.fs.Exists(op.SourcePath)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", op.RelSource, err)
		}
		if !exists {
			rep.Warn(progress.Warning{Stage: progress.StageMove, Path: op.RelSource, Message: "not found, skipping"})
			continue
		}

		if err := e.executeOperation(op); err != nil {
			return err
		}
		e.logger.Debug("moved", slog.String("from", op.RelSource), slog.String("to", op.RelDest))
		result.Moved = append(result.Moved, op)
		rep.Moved(op.RelSource, op.RelDest)
	}
	return nil
}

// patchConfig applies the config fragments. A missing config file is a
// warning, not a failure.
func (e *Engine) patchConfig(root string, m *manifest.Manifest, force bool, rep progress.Reporter) (*rewrite.PatchResult, error) {
	path := fsops.Resolve(root, m.ConfigFile)
	exists, err := e.fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", m.ConfigFile, err)
	}
	if !exists {
		rep.Warn(progress.Warning{Stage: progress.StagePatch, Path: m.ConfigFile, Message: "not found, skipping"})
		return nil, nil
	}

	patch, err := rewrite.PatchConfig(e.fs, path, rewrite.ConfigFragments(m), force)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", m.ConfigFile, err)
	}
	for _, key := range patch.Applied {
		rep.Patched(key)
	}
	e.logger.Debug("config patched",
		slog.String("file", m.ConfigFile),
		slog.Int("applied", len(patch.Applied)),
		slog.Bool("written", patch.Written),
	)
	return patch, nil
}

func reportChecks(rep progress.Reporter, checks *verify.Result) {
	for _, p := range checks.MissingDestinations {
		rep.Warn(progress.Warning{Stage: progress.StageVerify, Path: p, Message: "missing after reorganization"})
	}
	for _, p := range checks.LeftoverSources {
		rep.Warn(progress.Warning{Stage: progress.StageVerify, Path: p, Message: "still present at its old location"})
	}
	for _, mm := range checks.ChecksumMismatches {
		rep.Warn(progress.Warning{Stage: progress.StageVerify, Path: mm.To, Message: "content changed during move"})
	}
	for _, p := range checks.Unchecked {
		rep.Warn(progress.Warning{Stage: progress.StageVerify, Path: p, Message: "could not be hashed"})
	}
}
