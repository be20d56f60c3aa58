package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/fsops"
)

func newProject(t *testing.T) (parent, root string) {
	t.Helper()
	parent = t.TempDir()
	root = filepath.Join(parent, "Test-1-Godot")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".godot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "project.godot"), []byte("config_version=5\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ui.gd"), []byte("extends Control\n"), 0644))
	return parent, root
}

func newManager() *Manager {
	return NewManager(fsops.NewRealFS(), clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestDefaultDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", "Test-1-Godot-BACKUP"), DefaultDir("/work/Test-1-Godot"))
	assert.Equal(t, filepath.Join("/work", "Test-1-Godot-BACKUP"), DefaultDir("/work/Test-1-Godot/"))
}

func TestSnapshot_Default(t *testing.T) {
	parent, root := newProject(t)

	dir, err := newManager().Snapshot(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "Test-1-Godot-BACKUP"), dir)

	data, err := os.ReadFile(filepath.Join(dir, "ui.gd"))
	require.NoError(t, err)
	assert.Equal(t, "extends Control\n", string(data))
	assert.DirExists(t, filepath.Join(dir, ".godot"))
	assert.FileExists(t, filepath.Join(root, "ui.gd"), "snapshot must not touch the project")
}

func TestSnapshot_DefaultTakenGetsTimestamp(t *testing.T) {
	parent, root := newProject(t)
	taken := filepath.Join(parent, "Test-1-Godot-BACKUP")
	require.NoError(t, os.MkdirAll(taken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(taken, "keep.txt"), []byte("old"), 0644))

	dir, err := newManager().Snapshot(root, "")
	require.NoError(t, err)
	assert.Equal(t, taken+"-20240501-080000", dir)

	data, err := os.ReadFile(filepath.Join(taken, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "earlier backup must be left alone")
	assert.NoFileExists(t, filepath.Join(taken, "ui.gd"))
}

func TestSnapshot_RepeatedRunsGetDistinctDirs(t *testing.T) {
	parent, root := newProject(t)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	m := NewManager(fsops.NewRealFS(), clk)

	first, err := m.Snapshot(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "Test-1-Godot-BACKUP"), first)

	second, err := m.Snapshot(root, "")
	require.NoError(t, err)
	assert.Equal(t, first+"-20240501-080000", second)

	// Same second again: the stamped dir is taken too, so nothing is overwritten
	_, err = m.Snapshot(root, "")
	require.ErrorIs(t, err, ErrExists)

	clk.Advance(time.Minute)
	third, err := m.Snapshot(root, "")
	require.NoError(t, err)
	assert.Equal(t, first+"-20240501-080100", third)
}

func TestSnapshot_ExplicitDir(t *testing.T) {
	parent, root := newProject(t)
	m := newManager()

	t.Run("fresh directory", func(t *testing.T) {
		dir, err := m.Snapshot(root, filepath.Join(parent, "backups", "first"))
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "project.godot"))
	})

	t.Run("existing directory is never overwritten", func(t *testing.T) {
		existing := filepath.Join(parent, "existing")
		require.NoError(t, os.MkdirAll(existing, 0755))

		_, err := m.Snapshot(root, existing)
		require.ErrorIs(t, err, ErrExists)
		assert.NoFileExists(t, filepath.Join(existing, "ui.gd"))
	})

	t.Run("directory inside the project is rejected", func(t *testing.T) {
		_, err := m.Snapshot(root, filepath.Join(root, "backup"))
		require.ErrorIs(t, err, ErrInsideRoot)

		_, err = m.Snapshot(root, root)
		require.ErrorIs(t, err, ErrInsideRoot)
	})

	t.Run("sibling with a similar name is fine", func(t *testing.T) {
		_, err := m.Resolve(root, root+"..old")
		require.NoError(t, err)
	})
}

func TestSnapshot_RelativeDir(t *testing.T) {
	parent, root := newProject(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	t.Run("sibling of the project", func(t *testing.T) {
		rel, err := filepath.Rel(cwd, filepath.Join(parent, "game-bak"))
		require.NoError(t, err)
		require.False(t, filepath.IsAbs(rel))

		dir, err := newManager().Snapshot(root, rel)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(parent, "game-bak"), dir)
		assert.FileExists(t, filepath.Join(dir, "ui.gd"))
	})

	t.Run("inside the project", func(t *testing.T) {
		rel, err := filepath.Rel(cwd, filepath.Join(root, "bak"))
		require.NoError(t, err)

		_, err = newManager().Snapshot(root, rel)
		require.ErrorIs(t, err, ErrInsideRoot)
	})
}

// failingCopyFS copies half a tree and then fails.
type failingCopyFS struct {
	*fsops.RealFS
}

func (f failingCopyFS) Copy(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dst, "project.godot"), []byte("partial"), 0644); err != nil {
		return err
	}
	return errors.New("no space left on device")
}

func TestSnapshot_FailedCopyIsRemoved(t *testing.T) {
	parent, root := newProject(t)
	m := NewManager(failingCopyFS{fsops.NewRealFS()}, clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	_, err := m.Snapshot(root, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.NoDirExists(t, filepath.Join(parent, "Test-1-Godot-BACKUP"))
	assert.FileExists(t, filepath.Join(root, "project.godot"))
}

func TestSnapshot_MissingRoot(t *testing.T) {
	parent := t.TempDir()
	_, err := newManager().Snapshot(filepath.Join(parent, "nope"), "")
	require.Error(t, err)
}

func TestRestoreInstructions(t *testing.T) {
	steps := RestoreInstructions("/work/Test-1-Godot", "/work/Test-1-Godot-BACKUP")
	require.Len(t, steps, 3)
	assert.Equal(t, "Close Godot", steps[0])
	assert.Contains(t, steps[1], "/work/Test-1-Godot")
	assert.Equal(t, "Rename /work/Test-1-Godot-BACKUP to /work/Test-1-Godot", steps[2])

	manual := RestoreInstructions("/work/Test-1-Godot", "")
	require.Len(t, manual, 3)
	assert.Contains(t, manual[2], "your own backup")
}
