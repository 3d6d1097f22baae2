package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	if cfg.Scene.MaxUpdateDuration() != 100*time.Millisecond {
		t.Errorf("expected max update interval 100ms, got %v", cfg.Scene.MaxUpdateDuration())
	}
	if cfg.Scene.ScaleTolerance != 0 {
		t.Errorf("expected exact scale tolerance, got %v", cfg.Scene.ScaleTolerance)
	}
	if cfg.Scene.PreloadResources {
		t.Error("expected weak resource caching by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "retain3d.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

scene:
  max_update_interval: 0.05
  bounding_volume_padding: 0.25
  scale_tolerance: 0.001
  preload_resources: true

logging:
  level: "debug"
  log_file: "scene.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Scene.MaxUpdateDuration() != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", cfg.Scene.MaxUpdateDuration())
	}
	if cfg.Scene.BoundingVolumePadding != 0.25 {
		t.Errorf("expected padding 0.25, got %v", cfg.Scene.BoundingVolumePadding)
	}
	if !cfg.Scene.PreloadResources {
		t.Error("expected preload_resources to be true")
	}
	// Keys absent from the file keep their defaults.
	if cfg.Scene.MaxPickHits != 8 {
		t.Errorf("expected default max_pick_hits 8, got %d", cfg.Scene.MaxPickHits)
	}
	if cfg.Logging.LogFile != "scene.log" {
		t.Errorf("expected log file 'scene.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "retain3d.toml")

	tomlContent := `
[graphics]
width = 800
height = 600

[scene]
max_update_interval = 0.02
max_pick_hits = 3

[metrics]
enabled = true
listen_addr = "127.0.0.1:9999"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Graphics.Width != 800 || cfg.Graphics.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Scene.MaxPickHits != 3 {
		t.Errorf("expected max_pick_hits 3, got %d", cfg.Scene.MaxPickHits)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("unexpected metrics config: %+v", cfg.Metrics)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/retain3d.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected no config file, got %s", path)
	}

	if err := os.WriteFile("retain3d.toml", []byte("[graphics]\nwidth = 640\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if path := findConfigFile(); filepath.Base(path) != "retain3d.toml" {
		t.Errorf("expected retain3d.toml, got %q", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Graphics.Width = 1024
			cfg.Scene.ScaleTolerance = 0.01
			cfg.Viewer.Frames = 42
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		check func(*testing.T, *Config)
		reset func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			check: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected debug level, got %s", cfg.Logging.Level)
				}
			},
			reset: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			check: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			reset: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			reset: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			reset: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "headless and frames flags",
			setup: func() {
				*flagHeadless = true
				*flagFrames = 30
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Viewer.Headless || cfg.Viewer.Frames != 30 {
					t.Errorf("unexpected viewer config: %+v", cfg.Viewer)
				}
			},
			reset: func() {
				*flagHeadless = false
				*flagFrames = 0
			},
		},
		{
			name:  "metrics address flag",
			setup: func() { *flagMetricsAddr = ":9100" },
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddr != ":9100" {
					t.Errorf("unexpected metrics config: %+v", cfg.Metrics)
				}
			},
			reset: func() { *flagMetricsAddr = "" },
		},
		{
			name:  "overlay flag",
			setup: func() { *flagOverlay = true },
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Viewer.Overlay {
					t.Error("expected overlay to be enabled")
				}
			},
			reset: func() { *flagOverlay = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.reset()

			cfg := Default()
			applyFlags(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "retain3d.yaml")
	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retain3d.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  max_update_interval: 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changed <- c })
	}()

	// The watcher may not be registered yet, so keep rewriting until a
	// reload arrives.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Scene.MaxUpdateInterval != 0.25 {
				t.Errorf("expected reloaded interval 0.25, got %v", c.Scene.MaxUpdateInterval)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			_ = os.WriteFile(path, []byte("scene:\n  max_update_interval: 0.25\n"), 0644)
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
