package fsops

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestValidateRelPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "root level script", path: "game_manager.gd", wantError: false},
		{name: "nested scene", path: "scenes/levels/level_01.tscn", wantError: false},
		{name: "hidden dir", path: ".godot/imported/x.ctex", wantError: false},
		{name: "empty path", path: "", wantError: true},
		{name: "current directory", path: ".", wantError: true},
		{name: "absolute path", path: "/etc/hosts", wantError: true},
		{name: "parent traversal", path: "../outside.gd", wantError: true},
		{name: "traversal in middle", path: "scenes/../../outside.gd", wantError: true},
		{name: "dot prefix segment", path: "./ui.gd", wantError: true},
		{name: "trailing slash", path: "scripts/", wantError: true},
		{name: "backslash separators", path: `scripts\ui\ui.gd`, wantError: true},
		{name: "double slash", path: "scripts//ui.gd", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelPath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/project", "scenes", "spots", "tower_spot.tscn"),
		Resolve("/project", "scenes/spots/tower_spot.tscn"))
}

func TestRealFS_Exists(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"exists.gd": "extends Node"})

	exists, err := r.Exists(filepath.Join(tmpDir, "exists.gd"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.Exists(filepath.Join(tmpDir, "missing.gd"))
	require.NoError(t, err)
	assert.False(t, exists)

	// A dangling link still occupies its path
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "gone.gd"), filepath.Join(tmpDir, "dangling.gd")))
	exists, err = r.Exists(filepath.Join(tmpDir, "dangling.gd"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRealFS_MkdirAll(t *testing.T) {
	r := NewRealFS()
	dirPath := filepath.Join(t.TempDir(), "scripts", "autoloads")

	require.NoError(t, r.MkdirAll(dirPath, 0755))
	require.NoError(t, r.MkdirAll(dirPath, 0755), "second MkdirAll must be a no-op")
	assert.DirExists(t, dirPath)
}

func TestRealFS_Rename(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"ui.gd": "extends Control"})

	src := filepath.Join(tmpDir, "ui.gd")
	dst := filepath.Join(tmpDir, "scripts", "ui", "ui.gd")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))

	require.NoError(t, r.Rename(src, dst))
	assert.NoFileExists(t, src)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "extends Control", string(data))
}

func TestRealFS_RemoveAll(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"partial/scenes/a.tscn": "[gd_scene]"})

	require.NoError(t, r.RemoveAll(filepath.Join(tmpDir, "partial")))
	assert.NoDirExists(t, filepath.Join(tmpDir, "partial"))
	require.NoError(t, r.RemoveAll(filepath.Join(tmpDir, "partial")), "removing a missing path is not an error")
}

func TestRealFS_Copy(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "project")
	files := map[string]string{
		"project.godot":          "[application]",
		"scenes/ui/menu.tscn":    "[gd_scene]",
		"scripts/ui/menu.gd":     "extends Control",
		"scripts/ui/nested/a.gd": "extends Node",
	}
	writeFiles(t, src, files)

	dst := filepath.Join(tmpDir, "project-BACKUP")
	require.NoError(t, r.Copy(src, dst))

	for rel, content := range files {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if assert.NoError(t, err, "missing copied file %s", rel) {
			assert.Equal(t, content, string(data), rel)
		}
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()

	t.Run("write to new file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "atomic-new.tscn")
		require.NoError(t, r.AtomicWrite(testFile, []byte("[gd_scene format=3]"), 0644))

		data, err := os.ReadFile(testFile)
		require.NoError(t, err)
		assert.Equal(t, "[gd_scene format=3]", string(data))
	})

	t.Run("overwrite keeps requested mode", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "atomic-overwrite.gd")
		require.NoError(t, os.WriteFile(testFile, []byte("initial"), 0600))

		require.NoError(t, r.AtomicWrite(testFile, []byte("overwritten"), 0600))

		info, err := os.Stat(testFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("symlink is written through", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "shared.gd")
		require.NoError(t, os.WriteFile(target, []byte("old"), 0644))
		link := filepath.Join(tmpDir, "link.gd")
		require.NoError(t, os.Symlink(target, link))

		require.NoError(t, r.AtomicWrite(link, []byte("new"), 0644))

		info, err := os.Lstat(link)
		require.NoError(t, err)
		assert.True(t, info.Mode()&os.ModeSymlink != 0, "link must stay a symlink")
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(tmpDir)
		require.NoError(t, err)
		for _, e := range entries {
			matched, _ := filepath.Match(".godot-reorg-tmp-*", e.Name())
			assert.False(t, matched, "leftover temp file %s", e.Name())
		}
	})
}

func TestRealFS_ReadDir(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"scenes/b.tscn": "", "a.gd": "", "scripts/c.gd": ""})

	entries, err := r.ReadDir(tmpDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.gd", "scenes", "scripts"}, names)

	_, err = r.ReadDir(filepath.Join(tmpDir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRealFS_WalkDir(t *testing.T) {
	r := NewRealFS()
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"a.gd": "", "scenes/b.tscn": ""})

	var seen []string
	err := r.WalkDir(tmpDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(tmpDir, p)
			seen = append(seen, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)

	sort.Strings(seen)
	assert.Equal(t, []string{"a.gd", "scenes/b.tscn"}, seen)
}
