package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/progress"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const projectGodot = `config_version=5

[application]

config/name="Tower Defense"
run/main_scene="res://node_2d.tscn"

[autoload]

GameManager="*res://game_manager.tscn"
ClickManager="*res://click_manager.gd"
CameraEffects="*res://camera_effects.gd"
`

const towerSpotScene = `[gd_scene load_steps=2 format=3]

[node name="TowerSpot" type="Area2D"]
script = ExtResource("res://tower_spot.gd")
`

// newTestEngine creates an engine over the real filesystem with a fixed clock.
func newTestEngine() (*Engine, *progress.Recorder) {
	rec := progress.NewRecorder()
	eng := New(fsops.NewRealFS(), hash.NewSHA256Hasher(), clock.NewFakeClock(testTime), nil, rec)
	return eng, rec
}

// defaultTree returns every source of the built-in manifest plus the files a
// real project keeps around them.
func defaultTree() map[string]string {
	files := map[string]string{
		"project.godot":                   projectGodot,
		"tower_spot.tscn":                 towerSpotScene,
		"goblin_scout.gd":                 "extends CharacterBody2D\nvar scene = preload(\"res://goblin_scout.tscn\")\n",
		"scenes/towers/archer_tower.tscn": "[ext_resource type=\"PackedScene\" path=\"res://tower_info_menu.tscn\" id=\"1\"]\n",
		".godot/editor/cached.tscn":       "script = ExtResource(\"res://tower_spot.gd\")\n",
	}
	for _, mv := range manifest.Default().Moves {
		if _, ok := files[mv.From]; !ok {
			files[mv.From] = "extends Node # " + mv.From + "\n"
		}
	}
	return files
}

// writeTree creates files under a fresh project root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "game")
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
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

// contains checks if a string contains a substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
