// Package planner handles the planning phase of a reorganization.
//
// The planner turns a manifest into a deterministic execution plan for one
// project tree. It inspects the tree without mutating it, so every problem
// that can be known in advance is known before the first file moves.
//
// Key responsibilities:
//   - Generate a MovePlan with ordered mkdir and move operations
//   - Record missing sources as soft warnings
//   - Detect conflicts (occupied destinations, non-file sources, files
//     standing where a directory is needed)
package planner
