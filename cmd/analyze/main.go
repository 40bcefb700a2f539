// Command analyze prints quick, human-readable heuristics about the game
// variants: the built-in ones and every file in the config directory. It
// summarizes dimensions and spawn values, the largest tile the board can
// theoretically hold, and highlights files that fail validation.
package main

import (
	"context"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile2048/game/config"
	"github.com/wricardo/tile2048/game/engine"
)

// variantExtensions are the file types the config manager understands
var variantExtensions = []string{".json", ".yaml", ".yml"}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize and validate game variants",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory with extra .json/.yaml variants",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			invalid := analyze(os.Stdout, manager, cmd.String("config-dir"))
			if invalid > 0 {
				return fmt.Errorf("%d invalid variant file(s)", invalid)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// analyze reports every loadable variant, then every file in configDir that
// failed to load. It returns the number of failing files.
func analyze(w io.Writer, manager *config.Manager, configDir string) int {
	infos, err := manager.ListConfigs()
	if err != nil {
		fmt.Fprintf(w, "Error listing variants: %v\n", err)
		return 1
	}

	loaded := make(map[string]bool, len(infos))
	for _, info := range infos {
		loaded[info.ConfigID] = true

		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.ConfigID)
			fmt.Fprintf(w, "Error loading variant: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "\n=== Analyzing %s (%s) ===\n", info.ConfigID, info.Source)
		describeVariant(w, cfg)
	}

	invalid := 0
	for _, file := range variantFiles(configDir) {
		id := strings.TrimSuffix(file, filepath.Ext(file))
		if loaded[id] {
			continue
		}
		invalid++
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", file)
		_, err := manager.LoadConfig(id)
		fmt.Fprintf(w, "❌ INVALID: %v\n", err)
	}
	return invalid
}

// describeVariant prints the summary of one valid variant
func describeVariant(w io.Writer, cfg *engine.GameConfig) {
	maxSpawn := slices.Max(cfg.SpawnValues)
	reachable := engine.MaxReachableTile(cfg.GridSize, maxSpawn)

	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	if cfg.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", cfg.Description)
	}
	fmt.Fprintf(w, "Grid Size: %d x %d\n", cfg.GridSize, cfg.GridSize)
	fmt.Fprintf(w, "Win Value: %d\n", cfg.WinValue)
	fmt.Fprintf(w, "Spawn Values: %v\n", cfg.SpawnValues)
	fmt.Fprintf(w, "Max Reachable Tile: %d\n", reachable)

	if cfg.WinValue > reachable {
		fmt.Fprintf(w, "⚠️  WARNING: win value %d cannot be reached on this board\n", cfg.WinValue)
		return
	}
	fmt.Fprintf(w, "✅ Win value is reachable with %d doubling(s) to spare\n", headroom(cfg.WinValue, reachable))
}

// headroom counts how many times the win value can double before it exceeds
// the largest reachable tile. Both arguments are powers of two.
func headroom(winValue, reachable int) int {
	return bits.Len(uint(reachable)) - bits.Len(uint(winValue))
}

// variantFiles lists the variant file names in dir, sorted
func variantFiles(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(variantExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files
}
