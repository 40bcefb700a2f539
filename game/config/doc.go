// Package config provides game variant management.
//
// The config package handles:
//   - Built-in variants (classic, mini, large)
//   - Loading extra variants from JSON or YAML files
//   - Variant validation through engine.ValidateGameConfig
//   - Command line overrides of board size and winning tile
//
// Configuration Format:
//
// A variant file is named after its ID (classic.json, huge.yaml, ...) and holds
// the board size, the winning tile, the spawn values and optional player
// messages. Missing messages and spawn values fall back to the classic ones:
//
//	name: huge
//	description: 6x6 board played to 8192
//	grid_size: 6
//	win_value: 8192
//	spawn_values: [2, 4]
//
// A file whose ID matches a built-in variant replaces it.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	cfg, err := manager.LoadConfig("mini")
//
//	// Apply --size / --target
//	cfg, err = config.ApplyOverrides(cfg, 5, 0)
package config
