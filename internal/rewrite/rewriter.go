package rewrite

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/progress"
)

// RewriteFile applies set to the file at path. The file is written back only
// when its content changed, keeping its mode. The return value counts rules
// applied, not occurrences replaced.
func RewriteFile(fsys fsops.FS, path string, set *ReplacementSet) (int, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat: %w", err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read: %w", err)
	}

	original := string(data)
	updated, applied := set.Apply(original)
	if updated == original {
		return 0, nil
	}

	if err := fsys.AtomicWrite(path, []byte(updated), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write: %w", err)
	}
	return applied, nil
}

// FileChange records one rewritten file.
type FileChange struct {
	// Path is root-relative with forward slashes.
	Path  string `json:"path"`
	Rules int    `json:"rules"`
}

// Summary aggregates a RewriteAll pass.
type Summary struct {
	TotalChanges int          `json:"totalChanges"`
	FilesTouched int          `json:"filesTouched"`
	FilesScanned int          `json:"filesScanned"`
	Files        []FileChange `json:"files"`
}

// Rewriter walks a project tree and rewrites references in matching files.
type Rewriter struct {
	fs       fsops.FS
	set      *ReplacementSet
	include  []string
	cacheDir string
	reporter progress.Reporter
	logger   *slog.Logger
}

// NewRewriter creates a Rewriter. include holds doublestar patterns matched
// against root-relative slash paths; any directory named cacheDir is skipped.
func NewRewriter(fsys fsops.FS, set *ReplacementSet, include []string, cacheDir string, reporter progress.Reporter, logger *slog.Logger) *Rewriter {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rewriter{
		fs:       fsys,
		set:      set,
		include:  include,
		cacheDir: cacheDir,
		reporter: reporter,
		logger:   logger,
	}
}

// Files returns the root-relative slash paths of every file the rewriter
// would open, sorted.
func (r *Rewriter) Files(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := r.fs.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			r.reporter.Warn(progress.Warning{Stage: progress.StageRewrite, Path: p, Message: walkErr.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != root && d.Name() == r.cacheDir {
				r.logger.Debug("skipping cache directory", slog.String("path", p))
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if r.matches(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (r *Rewriter) matches(rel string) bool {
	for _, pattern := range r.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// RewriteAll rewrites every matching file under root. A file that cannot be
// read or written is reported as a warning and counts as zero changes; only
// a failure to traverse root itself or a cancelled ctx is returned as an error.
func (r *Rewriter) RewriteAll(ctx context.Context, root string) (*Summary, error) {
	files, err := r.Files(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	summary := &Summary{Files: []FileChange{}}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.FilesScanned++

		changes, err := RewriteFile(r.fs, fsops.Resolve(root, rel), r.set)
		if err != nil {
			r.reporter.Warn(progress.Warning{
				Stage:   progress.StageRewrite,
				Path:    rel,
				Message: fmt.Sprintf("error updating references: %v", err),
			})
			continue
		}
		if changes == 0 {
			continue
		}

		r.logger.Debug("rewrote references", slog.String("file", rel), slog.Int("rules", changes))
		r.reporter.Rewrote(rel, changes)
		summary.TotalChanges += changes
		summary.FilesTouched++
		summary.Files = append(summary.Files, FileChange{Path: rel, Rules: changes})
	}
	return summary, nil
}
