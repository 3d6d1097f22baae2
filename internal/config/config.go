// Package config handles scene and viewer configuration loading and
// management.
package config

import "time"

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Scene    SceneConfig    `yaml:"scene" toml:"scene"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Viewer   ViewerConfig   `yaml:"viewer" toml:"viewer"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit" toml:"fps_limit"`
}

// SceneConfig holds scene graph tuning. Intervals are in seconds.
type SceneConfig struct {
	// MaxUpdateInterval clamps the delta time handed to update hooks.
	MaxUpdateInterval float64 `yaml:"max_update_interval" toml:"max_update_interval"`
	// MinUpdateInterval skips updates that arrive sooner than this.
	MinUpdateInterval     float64 `yaml:"min_update_interval" toml:"min_update_interval"`
	BoundingVolumePadding float32 `yaml:"bounding_volume_padding" toml:"bounding_volume_padding"`
	ScaleTolerance        float32 `yaml:"scale_tolerance" toml:"scale_tolerance"`
	// PreloadResources makes resource caches hold strong references.
	PreloadResources bool `yaml:"preload_resources" toml:"preload_resources"`
	MaxPickHits      int  `yaml:"max_pick_hits" toml:"max_pick_hits"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
}

// ViewerConfig holds settings of the sceneview command.
type ViewerConfig struct {
	Headless bool `yaml:"headless" toml:"headless"`
	// Frames stops the viewer after this many frames; 0 runs until closed.
	Frames int `yaml:"frames" toml:"frames"`
	// Overlay draws the ImGui statistics and controls over the scene.
	Overlay bool `yaml:"overlay" toml:"overlay"`
}

// MaxUpdateDuration returns MaxUpdateInterval as a time.Duration.
func (s SceneConfig) MaxUpdateDuration() time.Duration {
	return time.Duration(s.MaxUpdateInterval * float64(time.Second))
}

// MinUpdateDuration returns MinUpdateInterval as a time.Duration.
func (s SceneConfig) MinUpdateDuration() time.Duration {
	return time.Duration(s.MinUpdateInterval * float64(time.Second))
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Scene: SceneConfig{
			MaxUpdateInterval:     0.1,
			MinUpdateInterval:     0,
			BoundingVolumePadding: 0,
			ScaleTolerance:        0,
			PreloadResources:      false,
			MaxPickHits:           8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9464",
		},
		Viewer: ViewerConfig{
			Headless: false,
			Frames:   0,
		},
	}
}
