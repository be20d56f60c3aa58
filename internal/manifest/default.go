package manifest

// Default returns the built-in reorganization of the tower-defense project:
// root-level scripts go under scripts/, scenes and their scripts under scenes/.
func Default() *Manifest {
	m := &Manifest{
		Moves: []Move{
			// Autoload scripts
			{From: "game_manager.gd", To: "scripts/autoloads/game_manager.gd"},
			{From: "click_manager.gd", To: "scripts/autoloads/click_manager.gd"},
			{From: "camera_effects.gd", To: "scripts/autoloads/camera_effects.gd"},

			// Manager scripts
			{From: "wave_manager.gd", To: "scripts/managers/wave_manager.gd"},
			{From: "placement_manager.gd", To: "scripts/managers/placement_manager.gd"},
			{From: "hero_manager.gd", To: "scripts/managers/hero_manager.gd"},

			// Camera scripts; the legacy controller is kept under a new name
			{From: "camera_controller_improved.gd", To: "scripts/camera/camera_controller_improved.gd"},
			{From: "camera_controller.gd", To: "scripts/camera/camera_controller_old.gd"},
			{From: "camera_settings_ui.gd", To: "scripts/camera/camera_settings_ui.gd"},

			// UI scripts
			{From: "ui.gd", To: "scripts/ui/ui.gd"},
			{From: "build_menu.gd", To: "scripts/ui/build_menu.gd"},
			{From: "tower_info_menu.gd", To: "scripts/ui/tower_info_menu.gd"},

			// Enemies
			{From: "goblin_scout.tscn", To: "scenes/enemies/goblin_scout.tscn"},
			{From: "goblin_scout.gd", To: "scenes/enemies/goblin_scout.gd"},
			{From: "orc_warrior.tscn", To: "scenes/enemies/orc_warrior.tscn"},
			{From: "orc_warrior.gd", To: "scenes/enemies/orc_warrior.gd"},

			// UI scenes
			{From: "build_menu.tscn", To: "scenes/ui/build_menu.tscn"},
			{From: "tower_info_menu.tscn", To: "scenes/ui/tower_info_menu.tscn"},

			// Spots
			{From: "tower_spot.tscn", To: "scenes/spots/tower_spot.tscn"},
			{From: "tower_spot.gd", To: "scenes/spots/tower_spot.gd"},
			{From: "hero_spot.tscn", To: "scenes/spots/hero_spot.tscn"},
			{From: "hero_spot.gd", To: "scenes/spots/hero_spot.gd"},

			// Main level, renamed
			{From: "node_2d.tscn", To: "scenes/levels/level_01.tscn"},

			// Manager scene
			{From: "game_manager.tscn", To: "scenes/managers/game_manager.tscn"},
		},
		Autoloads: []Autoload{
			{Name: "GameManager", Path: "game_manager.tscn"},
			{Name: "ClickManager", Path: "click_manager.gd"},
			{Name: "CameraEffects", Path: "camera_effects.gd"},
		},
	}
	m.applyDefaults()
	return m
}
