package engine

import "github.com/godot-reorg/reorg/internal/manifest"

// PlanRequest represents a request to preview a reorganization.
type PlanRequest struct {
	// Root is the absolute project root
	Root string

	// Manifest describes the moves
	Manifest *manifest.Manifest

	// Force allows overwriting existing destination files
	Force bool
}

// ReorganizeRequest represents a request to reorganize a project tree.
type ReorganizeRequest struct {
	// Root is the absolute project root
	Root string

	// Manifest describes the moves
	Manifest *manifest.Manifest

	// DryRun performs planning only without making changes
	DryRun bool

	// Force allows overwriting existing destination files
	Force bool

	// Backup copies the tree aside before any change
	Backup bool

	// BackupDir overrides the backup location and implies Backup
	BackupDir string

	// TouchConfig writes the config file even when no fragment matched
	TouchConfig bool
}

// VerifyRequest represents a request to check a reorganized tree.
type VerifyRequest struct {
	// Root is the absolute project root
	Root string

	// Manifest describes the moves
	Manifest *manifest.Manifest
}
