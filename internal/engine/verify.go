package engine

import (
	"context"
	"fmt"

	"github.com/godot-reorg/reorg/internal/verify"
)

// Verify checks an already reorganized tree against the manifest. Without
// fingerprints from a run only presence is checked.
func (e *Engine) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	if req.Manifest == nil {
		return nil, fmt.Errorf("%w: no manifest", ErrValidation)
	}
	if err := req.Manifest.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := e.checkRoot(req.Root); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	checks, err := verify.Verify(e.fs, e.hasher, req.Root, req.Manifest, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to verify: %w", err)
	}

	result := &VerifyResult{Root: req.Root, Checks: checks}
	if !checks.OK() {
		return result, fmt.Errorf("%w: %d missing, %d left behind",
			ErrVerification, len(checks.MissingDestinations), len(checks.LeftoverSources))
	}
	return result, nil
}
