// Package progress carries inline progress events from the pipeline to
// whoever is watching: the colored console in the CLI, or a Recorder in tests.
package progress

import (
	"fmt"
	"sync"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StagePlan    Stage = "plan"
	StageBackup  Stage = "backup"
	StageMkdir   Stage = "mkdir"
	StageMove    Stage = "move"
	StageRewrite Stage = "rewrite"
	StagePatch   Stage = "patch"
	StageVerify  Stage = "verify"
)

// Warning is a contained, non-fatal failure scoped to one item.
type Warning struct {
	Stage   Stage  `json:"stage"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Stage, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Stage, w.Path, w.Message)
}

// Reporter receives events as they happen.
type Reporter interface {
	// Begin announces a stage.
	Begin(stage Stage)

	// Created reports a directory that now exists.
	Created(dir string)

	// Moved reports a completed move.
	Moved(from, to string)

	// Rewrote reports a file whose references changed.
	Rewrote(path string, rules int)

	// Patched reports a config key that was updated.
	Patched(key string)

	// Warn reports a soft failure. It must never be dropped silently.
	Warn(w Warning)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Begin(Stage)          {}
func (Nop) Created(string)       {}
func (Nop) Moved(string, string) {}
func (Nop) Rewrote(string, int)  {}
func (Nop) Patched(string)       {}
func (Nop) Warn(Warning)         {}

// Recorder keeps every event in memory.
type Recorder struct {
	mu       sync.Mutex
	Stages   []Stage
	Dirs     []string
	Moves    [][2]string
	Rewrites map[string]int
	Keys     []string
	Warnings []Warning
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Rewrites: make(map[string]int)}
}

func (r *Recorder) Begin(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stages = append(r.Stages, stage)
}

func (r *Recorder) Created(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Dirs = append(r.Dirs, dir)
}

func (r *Recorder) Moved(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Moves = append(r.Moves, [2]string{from, to})
}

func (r *Recorder) Rewrote(path string, rules int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rewrites[path] = rules
}

func (r *Recorder) Patched(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Keys = append(r.Keys, key)
}

func (r *Recorder) Warn(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, w)
}
