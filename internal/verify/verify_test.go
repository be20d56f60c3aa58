package verify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
)

const testManifest = `
moves:
  - {from: a.gd, to: scripts/a.gd}
  - {from: b.tscn, to: scenes/b.tscn}
`

func setup(t *testing.T, files ...string) (string, *manifest.Manifest) {
	t.Helper()
	m, err := manifest.Parse([]byte(testManifest))
	require.NoError(t, err)

	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0644))
	}
	return root, m
}

func TestVerify_AllMoved(t *testing.T) {
	root, m := setup(t, "scripts/a.gd", "scenes/b.tscn")

	result, err := Verify(fsops.NewRealFS(), hash.NewSHA256Hasher(), root, m, nil, nil)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Empty(t, result.MissingDestinations)
	assert.Empty(t, result.LeftoverSources)
}

func TestVerify_MissingAndLeftover(t *testing.T) {
	root, m := setup(t, "a.gd", "b.tscn", "scenes/b.tscn")

	result, err := Verify(fsops.NewRealFS(), hash.NewSHA256Hasher(), root, m, nil, nil)
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"scripts/a.gd"}, result.MissingDestinations)
	assert.Equal(t, []string{"a.gd", "b.tscn"}, result.LeftoverSources)
}

func TestVerify_Checksums(t *testing.T) {
	root, m := setup(t, "scripts/a.gd", "scenes/b.tscn")

	hasher := hash.NewFakeHasher()
	hasher.SetHash(filepath.Join(root, "scripts", "a.gd"), "same")
	hasher.SetHash(filepath.Join(root, "scenes", "b.tscn"), "changed")
	before := map[string]string{"a.gd": "same", "b.tscn": "original"}

	t.Run("untouched file with new content is a mismatch", func(t *testing.T) {
		result, err := Verify(fsops.NewRealFS(), hasher, root, m, before, nil)
		require.NoError(t, err)
		assert.False(t, result.OK())
		require.Len(t, result.ChecksumMismatches, 1)
		assert.Equal(t, Mismatch{From: "b.tscn", To: "scenes/b.tscn", Before: "original", After: "changed"}, result.ChecksumMismatches[0])
	})

	t.Run("rewritten file is exempt", func(t *testing.T) {
		result, err := Verify(fsops.NewRealFS(), hasher, root, m, before, map[string]bool{"scenes/b.tscn": true})
		require.NoError(t, err)
		assert.True(t, result.OK())
	})

	t.Run("hash failure is reported as unchecked", func(t *testing.T) {
		hasher.SetError(filepath.Join(root, "scripts", "a.gd"), errors.New("denied"))
		result, err := Verify(fsops.NewRealFS(), hasher, root, m, before, map[string]bool{"scenes/b.tscn": true})
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, []string{"scripts/a.gd"}, result.Unchecked)
	})
}
