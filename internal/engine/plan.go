package engine

import (
	"context"

	"github.com/godot-reorg/reorg/internal/rewrite"
)

// Plan validates the manifest and previews the moves without changing the
// tree. Conflicts are reported in the plan, not as an error.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	p, err := e.prepare(ctx, req.Root, req.Manifest, req.Force)
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Root:      req.Root,
		Plan:      p.plan,
		Rules:     p.set.Len(),
		Fragments: len(rewrite.ConfigFragments(req.Manifest)),
	}, nil
}
