package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/godot-reorg/reorg/internal/manifest"
)

func TestVerify(t *testing.T) {
	root := writeTree(t, defaultTree())
	eng, _ := newTestEngine()
	m := manifest.Default()

	t.Run("before reorganizing", func(t *testing.T) {
		result, err := eng.Verify(context.Background(), &VerifyRequest{Root: root, Manifest: m})
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
		if len(result.Checks.MissingDestinations) != len(m.Moves) {
			t.Errorf("MissingDestinations = %d, want %d", len(result.Checks.MissingDestinations), len(m.Moves))
		}
		if len(result.Checks.LeftoverSources) != len(m.Moves) {
			t.Errorf("LeftoverSources = %d, want %d", len(result.Checks.LeftoverSources), len(m.Moves))
		}
	})

	if _, err := eng.Reorganize(context.Background(), &ReorganizeRequest{Root: root, Manifest: m}); err != nil {
		t.Fatalf("Reorganize() error = %v", err)
	}

	t.Run("after reorganizing", func(t *testing.T) {
		result, err := eng.Verify(context.Background(), &VerifyRequest{Root: root, Manifest: m})
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !result.Checks.OK() {
			t.Errorf("Checks = %+v", result.Checks)
		}
	})

	t.Run("invalid manifest", func(t *testing.T) {
		_, err := eng.Verify(context.Background(), &VerifyRequest{Root: root, Manifest: &manifest.Manifest{}})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}
