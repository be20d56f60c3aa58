// Package integration runs the full reorganization pipeline against real
// project trees, with faults injected at the filesystem boundary.
package integration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/engine"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/progress"
)

var errInjected = errors.New("injected failure")

// faultFS wraps the real filesystem and fails selected operations by
// base name.
type faultFS struct {
	fsops.FS
	failRename map[string]bool
	failWrite  map[string]bool
}

func newFaultFS() *faultFS {
	return &faultFS{
		FS:         fsops.NewRealFS(),
		failRename: make(map[string]bool),
		failWrite:  make(map[string]bool),
	}
}

func (f *faultFS) Rename(oldpath, newpath string) error {
	if f.failRename[filepath.Base(oldpath)] {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errInjected}
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *faultFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	if f.failWrite[filepath.Base(path)] {
		return &os.PathError{Op: "write", Path: path, Err: errInjected}
	}
	return f.FS.AtomicWrite(path, data, perm)
}

const testManifest = `
moves:
  - {from: player.gd, to: scripts/player.gd}
  - {from: enemy.gd, to: scripts/enemies/enemy.gd}
  - {from: level.tscn, to: scenes/level.tscn}
autoloads:
  - {name: Player, path: player.gd}
`

const projectGodot = `config_version=5

[application]

run/main_scene="res://level.tscn"

[autoload]

Player="*res://player.gd"
`

const levelScene = `[gd_scene load_steps=3 format=3]

[ext_resource type="Script" path="res://player.gd" id="1"]
[ext_resource type="Script" path="res://enemy.gd" id="2"]
`

// setupProject writes a small project under a fresh temp dir and returns its
// root together with the parsed manifest.
func setupProject(t *testing.T) (string, *manifest.Manifest) {
	t.Helper()

	m, err := manifest.Parse([]byte(testManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := filepath.Join(t.TempDir(), "game")
	files := map[string]string{
		"project.godot": projectGodot,
		"level.tscn":    levelScene,
		"player.gd":     "extends CharacterBody2D\n",
		"enemy.gd":      "extends Node2D\nvar level = preload(\"res://level.tscn\")\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root, m
}

func setupTestEngine(fsys fsops.FS) (*engine.Engine, *progress.Recorder) {
	rec := progress.NewRecorder()
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return engine.New(fsys, hash.NewSHA256Hasher(), clk, nil, rec), rec
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

func exists(root, rel string) bool {
	_, err := os.Lstat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
