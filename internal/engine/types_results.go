package engine

import (
	"time"

	"github.com/godot-reorg/reorg/internal/planner"
	"github.com/godot-reorg/reorg/internal/progress"
	"github.com/godot-reorg/reorg/internal/rewrite"
	"github.com/godot-reorg/reorg/internal/verify"
)

// PlanResult represents the result of planning.
type PlanResult struct {
	// Root is the project root
	Root string `json:"root"`

	// Plan is the generated plan
	Plan *planner.MovePlan `json:"plan"`

	// Rules is the number of reference replacement rules
	Rules int `json:"rules"`

	// Fragments is the number of config fragments that may be patched
	Fragments int `json:"fragments"`
}

// ReorganizeResult represents the outcome of every stage of a run.
type ReorganizeResult struct {
	Root   string `json:"root"`
	DryRun bool   `json:"dryRun"`

	// Plan is the generated plan
	Plan *planner.MovePlan `json:"plan"`

	// BackupDir is where the tree was copied (empty if no backup)
	BackupDir string `json:"backupDir,omitempty"`

	// Mutated is set once the tree may have been changed. A failure after
	// that point needs the backup to undo.
	Mutated bool `json:"mutated"`

	// Created lists directories created, relative to Root
	Created []string `json:"created"`

	// Moved lists move operations that were executed (empty if DryRun)
	Moved []planner.Operation `json:"moved"`

	// Rewrite summarizes reference rewriting (nil if DryRun)
	Rewrite *rewrite.Summary `json:"rewrite,omitempty"`

	// Config describes the config patch (nil if DryRun or no config file)
	Config *rewrite.PatchResult `json:"config,omitempty"`

	// Verify holds postcondition checks (nil if DryRun)
	Verify *verify.Result `json:"verify,omitempty"`

	// Warnings lists every contained failure, in the order reported
	Warnings []progress.Warning `json:"warnings"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// VerifyResult represents the result of a standalone verification.
type VerifyResult struct {
	Root   string         `json:"root"`
	Checks *verify.Result `json:"checks"`
}
