package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile2048/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		GridSize:    5,
		WinValue:    1024,
		SpawnValues: []int{2, 4},
		Messages:    engine.DefaultMessages(),
	}
}

func writeConfigFile(t *testing.T, dir, filename string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func writeRawFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("builtins only", func(t *testing.T) {
		manager, err := NewManager("")
		require.NoError(t, err)

		def := manager.GetDefault()
		require.NotNil(t, def)
		assert.Equal(t, "classic", def.Name)
		assert.Equal(t, 4, def.GridSize)
		assert.Equal(t, 2048, def.WinValue)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("file shadows classic", func(t *testing.T) {
		dir := t.TempDir()
		config := createValidConfig()
		config.Name = "classic"
		writeConfigFile(t, dir, "classic.json", config)

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, 5, manager.GetDefault().GridSize)
	})
}

func TestBuiltinConfigs(t *testing.T) {
	builtins := BuiltinConfigs()

	expected := map[string][2]int{
		"classic": {4, 2048},
		"mini":    {3, 256},
		"large":   {5, 4096},
	}
	require.Len(t, builtins, len(expected))

	for name, dims := range expected {
		config, ok := builtins[name]
		require.True(t, ok, "missing builtin %s", name)
		assert.Equal(t, dims[0], config.GridSize, name)
		assert.Equal(t, dims[1], config.WinValue, name)
		assert.NoError(t, engine.ValidateGameConfig(config), name)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "json_variant.json", createValidConfig())
	writeRawFile(t, dir, "yaml_variant.yaml", `
name: Six by six
description: Big board
grid_size: 6
win_value: 8192
spawn_values: [2]
messages:
  victory: "Huge! %d!"
`)
	writeRawFile(t, dir, "nameless.yml", "grid_size: 3\nwin_value: 128\n")
	writeRawFile(t, dir, "broken.json", "{not json")
	writeRawFile(t, dir, "unwinnable.yaml", "name: nope\ngrid_size: 2\nwin_value: 2048\n")

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json file", func(t *testing.T) {
		config, err := manager.LoadConfig("json_variant")
		require.NoError(t, err)
		assert.Equal(t, "Test Config", config.Name)
		assert.Equal(t, 5, config.GridSize)
	})

	t.Run("extension is optional", func(t *testing.T) {
		a, err := manager.LoadConfig("json_variant.json")
		require.NoError(t, err)
		b, err := manager.LoadConfig("json_variant")
		require.NoError(t, err)
		assert.Same(t, a, b, "expected the cached config")
	})

	t.Run("yaml file with defaults", func(t *testing.T) {
		config, err := manager.LoadConfig("yaml_variant")
		require.NoError(t, err)
		assert.Equal(t, "Six by six", config.Name)
		assert.Equal(t, 6, config.GridSize)
		assert.Equal(t, []int{2}, config.SpawnValues)
		assert.Equal(t, "Huge! 8192!", config.VictoryText())
		assert.Equal(t, engine.DefaultMessages().CantMove, config.Messages.CantMove)
	})

	t.Run("name falls back to file name", func(t *testing.T) {
		config, err := manager.LoadConfig("nameless")
		require.NoError(t, err)
		assert.Equal(t, "nameless", config.Name)
		assert.Equal(t, []int{2, 4}, config.SpawnValues)
	})

	t.Run("builtin", func(t *testing.T) {
		config, err := manager.LoadConfig("mini")
		require.NoError(t, err)
		assert.Equal(t, 3, config.GridSize)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := manager.LoadConfig("missing")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := manager.LoadConfig("broken")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unreachable win value", func(t *testing.T) {
		_, err := manager.LoadConfig("unwinnable")
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "unreachable")
	})
}

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "custom.json", createValidConfig())
	mini := createValidConfig()
	mini.Name = "my mini"
	mini.GridSize = 3
	mini.WinValue = 512
	writeConfigFile(t, dir, "mini.json", mini)
	writeRawFile(t, dir, "broken.json", "{")
	writeRawFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	configs, err := manager.ListConfigs()
	require.NoError(t, err)

	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ConfigID
	}
	assert.Equal(t, []string{"classic", "custom", "large", "mini"}, ids)

	for _, c := range configs {
		switch c.ConfigID {
		case "mini":
			assert.Equal(t, "file", c.Source)
			assert.Equal(t, "mini.json", c.Filename)
			assert.Equal(t, 512, c.WinValue)
		case "classic", "large":
			assert.Equal(t, "builtin", c.Source)
			assert.Empty(t, c.Filename)
		}
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		config := createValidConfig()
		require.NoError(t, manager.SaveConfig("saved", config))
		assert.FileExists(t, filepath.Join(dir, "saved.json"))

		reloaded, err := NewManager(dir)
		require.NoError(t, err)
		loaded, err := reloaded.LoadConfig("saved")
		require.NoError(t, err)
		assert.Equal(t, config.GridSize, loaded.GridSize)
		assert.Equal(t, config.WinValue, loaded.WinValue)
	})

	t.Run("yaml", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "yaml saved"
		require.NoError(t, manager.SaveConfig("saved_yaml.yaml", config))
		assert.FileExists(t, filepath.Join(dir, "saved_yaml.yaml"))

		reloaded, err := NewManager(dir)
		require.NoError(t, err)
		loaded, err := reloaded.LoadConfig("saved_yaml")
		require.NoError(t, err)
		assert.Equal(t, "yaml saved", loaded.Name)
		assert.Equal(t, config.Messages, loaded.Messages)
	})

	t.Run("defaults filled", func(t *testing.T) {
		config := &engine.GameConfig{Name: "bare", GridSize: 4, WinValue: 2048}
		require.NoError(t, manager.SaveConfig("bare", config))
		assert.Empty(t, config.SpawnValues, "the caller's config is not modified")

		cached, err := manager.LoadConfig("bare")
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultMessages(), cached.Messages)
		assert.Equal(t, engine.DefaultSpawnValues, cached.SpawnValues)

		reloaded, err := NewManager(dir)
		require.NoError(t, err)
		fromDisk, err := reloaded.LoadConfig("bare")
		require.NoError(t, err)
		assert.Equal(t, cached.Messages, fromDisk.Messages)
	})

	t.Run("invalid", func(t *testing.T) {
		config := createValidConfig()
		config.WinValue = 3
		err := manager.SaveConfig("bad", config)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.NoFileExists(t, filepath.Join(dir, "bad.json"))
	})

	t.Run("path in name", func(t *testing.T) {
		err := manager.SaveConfig("../escape", createValidConfig())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("no directory", func(t *testing.T) {
		builtinsOnly, err := NewManager("")
		require.NoError(t, err)
		assert.Error(t, builtinsOnly.SaveConfig("x", createValidConfig()))
	})
}

func TestSetDefault(t *testing.T) {
	manager, err := NewManager("")
	require.NoError(t, err)

	require.NoError(t, manager.SetDefault("large"))
	assert.Equal(t, "large", manager.GetDefault().Name)

	assert.ErrorIs(t, manager.SetDefault("missing"), ErrConfigNotFound)
	assert.Equal(t, "large", manager.GetDefault().Name)
}

func TestRegister(t *testing.T) {
	manager, err := NewManager("")
	require.NoError(t, err)

	tiny := &engine.GameConfig{Name: "tiny", GridSize: 2, WinValue: 16}
	require.NoError(t, manager.Register("tiny", tiny))

	loaded, err := manager.LoadConfig("tiny")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultMessages(), loaded.Messages)
	assert.Equal(t, engine.DefaultSpawnValues, loaded.SpawnValues)

	err = manager.Register("broken", &engine.GameConfig{Name: "broken", GridSize: 4, WinValue: 100})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, manager.Register("nil", nil), ErrInvalidConfig)
}

func TestApplyOverrides(t *testing.T) {
	base := engine.DefaultConfig()

	t.Run("no overrides", func(t *testing.T) {
		out, err := ApplyOverrides(base, 0, 0)
		require.NoError(t, err)
		assert.Same(t, base, out)
	})

	t.Run("size and target", func(t *testing.T) {
		out, err := ApplyOverrides(base, 6, 8192)
		require.NoError(t, err)
		assert.Equal(t, 6, out.GridSize)
		assert.Equal(t, 8192, out.WinValue)
		assert.Equal(t, "classic-6x6-8192", out.Name)
		assert.Equal(t, 4, base.GridSize, "base config must not change")
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := ApplyOverrides(base, 0, 1000)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unreachable target", func(t *testing.T) {
		_, err := ApplyOverrides(base, 2, 0)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "custom.json", createValidConfig())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names := []string{"classic", "mini", "large", "custom"}
			config, err := manager.LoadConfig(names[i%len(names)])
			assert.NoError(t, err)
			assert.NotNil(t, config)
			_, err = manager.ListConfigs()
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
