package planner

import "github.com/godot-reorg/reorg/internal/progress"

// MovePlan represents a plan to reorganize one project tree.
type MovePlan struct {
	// Root is the absolute project root the plan was built against
	Root string `json:"root"`

	// Operations is the ordered list of operations to execute
	Operations []Operation `json:"operations"`

	// Warnings lists planned moves that will be skipped
	Warnings []progress.Warning `json:"warnings"`

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict `json:"conflicts"`
}

// Operation represents a single filesystem operation to execute.
type Operation struct {
	// Type is the operation type: "mkdir" or "move"
	Type string `json:"type"`

	// SourcePath is the absolute source path (empty for mkdir)
	SourcePath string `json:"-"`

	// DestPath is the absolute destination path
	DestPath string `json:"-"`

	// RelSource is the manifest source path (empty for mkdir)
	RelSource string `json:"from,omitempty"`

	// RelDest is the manifest destination path, or the directory for mkdir
	RelDest string `json:"to"`
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the project-relative path where the conflict was detected
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Existing describes what currently exists at the path
	Existing string `json:"existing"`

	// Incoming describes what the plan wants to create
	Incoming string `json:"incoming"`
}

// Operation type constants
const (
	OpMkdir = "mkdir"
	OpMove  = "move"
)

// NewMovePlan creates a new empty MovePlan.
func NewMovePlan(root string) *MovePlan {
	return &MovePlan{
		Root:       root,
		Operations: []Operation{},
		Warnings:   []progress.Warning{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *MovePlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *MovePlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *MovePlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// AddWarning records a planned move that will be skipped.
func (p *MovePlan) AddWarning(w progress.Warning) {
	p.Warnings = append(p.Warnings, w)
}

// Moves returns only the move operations, in order.
func (p *MovePlan) Moves() []Operation {
	var moves []Operation
	for _, op := range p.Operations {
		if op.Type == OpMove {
			moves = append(moves, op)
		}
	}
	return moves
}
